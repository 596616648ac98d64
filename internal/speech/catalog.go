package speech

// Category tags a catalog phrase by where the assistant uses it.
type Category string

const (
	CategoryGreeting     Category = "greeting"
	CategoryConfirmation Category = "confirmation"
	CategoryError        Category = "error"
	CategoryTransit      Category = "transit"
)

// Phrase is one entry of the fixed, build-time utterance catalog. The
// catalog is immutable and not user-editable; caching synthesized audio
// for it avoids paying the provider twice for the same canned line.
type Phrase struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

var catalog = []Phrase{
	{ID: "greeting.bom_dia", Text: "Bom dia", Category: CategoryGreeting},
	{ID: "greeting.boa_tarde", Text: "Boa tarde", Category: CategoryGreeting},
	{ID: "greeting.boa_noite", Text: "Boa noite", Category: CategoryGreeting},
	{ID: "greeting.intro", Text: "Olá! Eu sou a ISA, sua assistente financeira.", Category: CategoryGreeting},
	{ID: "greeting.first_today", Text: "Que bom ter você de volta! Vamos cuidar das suas finanças hoje?", Category: CategoryGreeting},
	{ID: "confirm.transaction_saved", Text: "Transação registrada com sucesso.", Category: CategoryConfirmation},
	{ID: "confirm.goal_reached", Text: "Parabéns! Você atingiu a sua meta.", Category: CategoryConfirmation},
	{ID: "confirm.budget_updated", Text: "Orçamento atualizado.", Category: CategoryConfirmation},
	{ID: "error.not_understood", Text: "Desculpe, não entendi. Pode repetir?", Category: CategoryError},
	{ID: "error.try_again", Text: "Algo deu errado. Vamos tentar de novo?", Category: CategoryError},
	{ID: "transit.bus_arriving", Text: "Seu ônibus está chegando na parada.", Category: CategoryTransit},
	{ID: "transit.no_stops_nearby", Text: "Não encontrei paradas de ônibus por perto.", Category: CategoryTransit},
}

// catalogByText indexes phrases by their normalized text so dynamic
// sentences that happen to match a canned line reuse its cache slot.
var catalogByText = func() map[string]Phrase {
	m := make(map[string]Phrase, len(catalog))
	for _, p := range catalog {
		m[Normalize(p.Text)] = p
	}
	return m
}()

// Catalog returns a copy of the phrase catalog.
func Catalog() []Phrase {
	out := make([]Phrase, len(catalog))
	copy(out, catalog)
	return out
}

// LookupByText matches normalized text against the catalog.
func LookupByText(normalized string) (Phrase, bool) {
	p, ok := catalogByText[normalized]
	return p, ok
}

// LookupByID finds a catalog phrase by identifier.
func LookupByID(id string) (Phrase, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Phrase{}, false
}
