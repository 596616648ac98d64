package speech

import (
	"regexp"
	"strconv"
	"strings"
)

// Currency amounts show up in assistant sentences both symbol-prefixed
// ("R$ 10,50") and unit-suffixed ("10,50 reais"). Both forms rewrite to
// fully spelled-out Portuguese before synthesis.
var (
	symbolAmountPattern = regexp.MustCompile(`R\$\s*(\d+)(?:[.,](\d{1,2}))?`)
	suffixAmountPattern = regexp.MustCompile(`(?i)\b(\d+)(?:[.,](\d{1,2}))?\s*(reais|real)\b`)
)

// NormalizeCurrency rewrites currency expressions into spoken words and
// then applies Normalize. "R$ 10,50" becomes "dez reais e cinquenta
// centavos"; amounts below one real drop the unit word entirely
// ("noventa e nove centavos").
func NormalizeCurrency(raw string) string {
	raw = symbolAmountPattern.ReplaceAllStringFunc(raw, func(m string) string {
		sub := symbolAmountPattern.FindStringSubmatch(m)
		return amountToWords(sub[1], sub[2])
	})
	raw = suffixAmountPattern.ReplaceAllStringFunc(raw, func(m string) string {
		sub := suffixAmountPattern.FindStringSubmatch(m)
		return amountToWords(sub[1], sub[2])
	})
	return Normalize(raw)
}

// amountToWords renders integer reais and fractional centavos. A single
// fraction digit means tenths ("10,5" is fifty centavos, not five).
func amountToWords(intDigits, fracDigits string) string {
	reais, err := strconv.ParseInt(intDigits, 10, 64)
	if err != nil {
		return intDigits
	}
	var centavos int64
	if fracDigits != "" {
		centavos, err = strconv.ParseInt(fracDigits, 10, 64)
		if err != nil {
			centavos = 0
		}
		if len(fracDigits) == 1 {
			centavos *= 10
		}
	}

	var parts []string
	if reais > 0 {
		unit := "reais"
		if reais == 1 {
			unit = "real"
		}
		parts = append(parts, numberToWords(reais)+" "+unit)
	}
	if centavos > 0 {
		unit := "centavos"
		if centavos == 1 {
			unit = "centavo"
		}
		parts = append(parts, numberToWords(centavos)+" "+unit)
	}
	if len(parts) == 0 {
		return "zero reais"
	}
	return strings.Join(parts, " e ")
}

var (
	unitWords = []string{"zero", "um", "dois", "três", "quatro", "cinco", "seis", "sete", "oito", "nove",
		"dez", "onze", "doze", "treze", "quatorze", "quinze", "dezesseis", "dezessete", "dezoito", "dezenove"}
	tenWords = []string{"", "", "vinte", "trinta", "quarenta", "cinquenta", "sessenta", "setenta", "oitenta", "noventa"}
	// Index 1 is unused: exactly 100 is the irregular "cem", while
	// 101-199 use "cento".
	hundredWords = []string{"", "cento", "duzentos", "trezentos", "quatrocentos", "quinhentos",
		"seiscentos", "setecentos", "oitocentos", "novecentos"}
)

func numberToWords(n int64) string {
	switch {
	case n < 0:
		return "menos " + numberToWords(-n)
	case n < 20:
		return unitWords[n]
	case n < 100:
		w := tenWords[n/10]
		if rest := n % 10; rest != 0 {
			w += " e " + unitWords[rest]
		}
		return w
	case n == 100:
		return "cem"
	case n < 1000:
		w := hundredWords[n/100]
		if rest := n % 100; rest != 0 {
			w += " e " + numberToWords(rest)
		}
		return w
	case n < 1_000_000:
		thousands := n / 1000
		w := "mil"
		if thousands > 1 {
			w = numberToWords(thousands) + " mil"
		}
		return joinMagnitude(w, n%1000)
	default:
		millions := n / 1_000_000
		w := "um milhão"
		if millions > 1 {
			w = numberToWords(millions) + " milhões"
		}
		return joinMagnitude(w, n%1_000_000)
	}
}

// joinMagnitude appends the remainder after a magnitude word. Portuguese
// inserts "e" only when the remainder is under 100 or an exact hundred.
func joinMagnitude(head string, rest int64) string {
	if rest == 0 {
		return head
	}
	if rest < 100 || rest%100 == 0 {
		return head + " e " + numberToWords(rest)
	}
	return head + " " + numberToWords(rest)
}
