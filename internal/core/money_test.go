package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1", "1.00", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"1.005", "1.01", true},
		{" 2.50 ", "2.50", true},
		{"-3", "-3.00", true},
		{"0.004", "0.00", true},
		{"184467440737095516.17", "184467440737095516.17", true},
		{"1e-1000000", "0.00", true},
		{"1e1000000", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMoney(tc.in)
			if !tc.ok {
				require.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestMoneyArithmeticIsExact(t *testing.T) {
	var total Money
	for range 10 {
		total = total.Add(MoneyFromCents(10))
	}
	assert.Equal(t, "1.00", total.String())
	cents, err := total.Cents()
	require.NoError(t, err)
	assert.Equal(t, int64(100), cents)
	assert.True(t, total.Sub(MoneyFromCents(100)).Equal(Money{}))
}

func TestMoneyCentsOutOfRange(t *testing.T) {
	cents, err := MaxMoney.Cents()
	require.NoError(t, err)
	assert.Equal(t, int64(999_999_999_999_999_999), cents)
	assert.Equal(t, "9999999999999999.99", MaxMoney.String())

	huge, err := ParseMoney("184467440737095516.17")
	require.NoError(t, err)
	_, err = huge.Cents()
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
	assert.True(t, huge.GreaterThan(MaxMoney))
}

func TestMoneyJSON(t *testing.T) {
	var payload struct {
		Value Money `json:"value"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"value": 19.999}`), &payload))
	assert.Equal(t, "20.00", payload.Value.String())

	require.NoError(t, json.Unmarshal([]byte(`{"value": "7,5"}`), &payload))
	assert.Equal(t, "7.50", payload.Value.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value": 7.50}`, string(out))
	assert.Contains(t, string(out), "7.50")

	assert.Error(t, json.Unmarshal([]byte(`{"value": "ten"}`), &payload))
}
