package speech

import "testing"

func TestNormalizeStripsEmojiAndBlankLines(t *testing.T) {
	got := Normalize("Bom dia! 😊\n\nTudo bem?")
	want := "Bom dia! . Tudo bem?"
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeTable(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "  \n\t ", ""},
		{"emoji only", "😊🎉", ""},
		{"markdown emphasis", "**Saldo** atualizado em _tempo real_", "Saldo atualizado em tempo real"},
		{"markdown link keeps label", "Veja [seu extrato](https://app.example/extrato)", "Veja seu extrato"},
		{"url dropped", "Acesse https://example.com agora", "Acesse agora"},
		{"inline code dropped", "Use `speak()` para falar", "Use para falar"},
		{"collapse spaces", "muito    espaço", "muito espaço"},
		{"single newline", "primeira\nsegunda", "primeira. segunda"},
		{"accents preserved", "Atenção: cartão de crédito", "Atenção: cartão de crédito"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Bom dia! 😊\n\nTudo bem?",
		"**Saldo**: R$ 120,00\nVeja mais",
		"linha um\n\n\nlinha dois",
		"texto simples",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestCatalogLookup(t *testing.T) {
	p, ok := LookupByText(Normalize("Bom dia"))
	if !ok {
		t.Fatalf("catalog should contain normalized %q", "Bom dia")
	}
	if p.ID != "greeting.bom_dia" || p.Category != CategoryGreeting {
		t.Fatalf("unexpected phrase: %+v", p)
	}

	if _, ok := LookupByText("frase inventada agora"); ok {
		t.Fatalf("unexpected catalog hit for dynamic text")
	}

	byID, ok := LookupByID("confirm.transaction_saved")
	if !ok || byID.Text == "" {
		t.Fatalf("LookupByID failed: %+v ok=%v", byID, ok)
	}
}
