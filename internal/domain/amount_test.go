package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxUint256 = "115792089237316195423570985008687907853269984665640564039457584007913129639935"

// TestParseAmount covers the digit-string contract: no signs, no points,
// no hex, range-checked against 2^256-1.
func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "zero", in: "0", want: "0"},
		{name: "typical", in: "1000", want: "1000"},
		{name: "leading zeros normalize", in: "000123", want: "123"},
		{name: "max uint256", in: maxUint256, want: maxUint256},
		{name: "zero padded beyond 78 digits", in: "0000000000000000000000000000000000000000000000000000000000000000000000000000042", want: "42"},
		{name: "empty", in: "", wantErr: true},
		{name: "plus sign", in: "+1", wantErr: true},
		{name: "minus sign", in: "-1", wantErr: true},
		{name: "decimal point", in: "1.5", wantErr: true},
		{name: "trailing letters", in: "123abc", wantErr: true},
		{name: "scientific notation", in: "1e18", wantErr: true},
		{name: "hex", in: "0x10", wantErr: true},
		{name: "interior space", in: "1 000", wantErr: true},
		{name: "one above max", in: "115792089237316195423570985008687907853269984665640564039457584007913129639936", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

// TestAmountJSON checks that amounts travel as quoted strings only.
func TestAmountJSON(t *testing.T) {
	t.Run("quoted decimal round trips", func(t *testing.T) {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(`"1000"`), &a))
		out, err := json.Marshal(a)
		require.NoError(t, err)
		assert.Equal(t, `"1000"`, string(out))
	})
	t.Run("marshal is canonical", func(t *testing.T) {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(`"0042"`), &a))
		out, err := json.Marshal(a)
		require.NoError(t, err)
		assert.Equal(t, `"42"`, string(out))
	})
	t.Run("bare number rejected", func(t *testing.T) {
		var a Amount
		assert.Error(t, json.Unmarshal([]byte(`1000`), &a))
	})
	t.Run("float string rejected", func(t *testing.T) {
		var a Amount
		assert.Error(t, json.Unmarshal([]byte(`"1.0"`), &a))
	})
}

func TestAmountAdd(t *testing.T) {
	t.Run("sums", func(t *testing.T) {
		sum, err := MustAmount("1000").Add(NewAmount(1))
		require.NoError(t, err)
		assert.Equal(t, "1001", sum.String())
	})
	t.Run("overflow at max", func(t *testing.T) {
		_, err := MustAmount(maxUint256).Add(NewAmount(1))
		require.ErrorIs(t, err, ErrOverflow)
	})
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{in: "0.003"},
		{in: "1"},
		{in: "0.25"},
		{in: "", wantErr: true},
		{in: ".5", wantErr: true},
		{in: "5.", wantErr: true},
		{in: "1.2.3", wantErr: true},
		{in: "-0.1", wantErr: true},
		{in: "1e-3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimal(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestParseBigInt(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "0", want: "0"},
		{in: "-1", want: "-1"},
		{in: "340282366920938463463374607431768211455", want: "340282366920938463463374607431768211455"},
		{in: "-0", want: "0"},
		{in: "007", want: "7"},
		{in: "", wantErr: true},
		{in: "-", wantErr: true},
		{in: "--1", wantErr: true},
		{in: "+5", wantErr: true},
		{in: "1.5", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBigInt(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
