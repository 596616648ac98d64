package speech

import "testing"

func TestNormalizeCurrencyScenarios(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"symbol with cents", "R$ 10,50", "dez reais e cinquenta centavos"},
		{"cents only drops unit", "R$ 0,99", "noventa e nove centavos"},
		{"singular real", "R$ 1,00", "um real"},
		{"singular centavo", "R$ 0,01", "um centavo"},
		{"zero", "R$ 0,00", "zero reais"},
		{"dot separator", "R$ 10.50", "dez reais e cinquenta centavos"},
		{"suffixed unit", "gastei 25 reais ontem", "gastei vinte e cinco reais ontem"},
		{"suffixed with cents", "2,50 reais", "dois reais e cinquenta centavos"},
		{"inside sentence", "Seu saldo é R$ 120,05 hoje", "Seu saldo é cento e vinte reais e cinco centavos hoje"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeCurrency(tc.in); got != tc.want {
				t.Fatalf("NormalizeCurrency(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNumberToWords(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "zero"},
		{7, "sete"},
		{15, "quinze"},
		{21, "vinte e um"},
		{100, "cem"},
		{101, "cento e um"},
		{199, "cento e noventa e nove"},
		{200, "duzentos"},
		{345, "trezentos e quarenta e cinco"},
		{1000, "mil"},
		{1001, "mil e um"},
		{1100, "mil e cem"},
		{1234, "mil duzentos e trinta e quatro"},
		{2000, "dois mil"},
		{1_000_000, "um milhão"},
		{2_000_500, "dois milhões e quinhentos"},
	}
	for _, tc := range cases {
		if got := numberToWords(tc.n); got != tc.want {
			t.Fatalf("numberToWords(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
