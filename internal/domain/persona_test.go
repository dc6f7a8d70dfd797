package domain

import "testing"

func TestEveryPersonaHasInstruction(t *testing.T) {
	t.Parallel()

	seen := make(map[string]Persona)
	for _, p := range Personas() {
		if p.Instruction() == "" {
			t.Fatalf("persona %d has empty instruction", p)
		}
		if p.Code() == "" || p.Slug() == "" || p.Label() == "" {
			t.Fatalf("persona %d has incomplete metadata", p)
		}
		if other, ok := seen[p.Code()]; ok {
			t.Fatalf("persona %d shares code %q with %d", p, p.Code(), other)
		}
		seen[p.Code()] = p
	}
	if got := len(Personas()); got != 2 {
		t.Fatalf("expected 2 personas, got %d", got)
	}
	if Personas()[0] != DefaultPersona {
		t.Fatalf("expected default persona to be listed first")
	}
}

func TestResolveInstructionIsDeterministic(t *testing.T) {
	t.Parallel()

	for _, p := range Personas() {
		first := ResolveInstruction(p.Code())
		for i := 0; i < 3; i++ {
			if got := ResolveInstruction(p.Code()); got != first {
				t.Fatalf("instruction for %s changed between calls", p)
			}
		}
		if first != p.Instruction() {
			t.Fatalf("ResolveInstruction(%q) did not match persona instruction", p.Code())
		}
	}
}

func TestLookupPersonaRecognizedIdentifiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want Persona
	}{
		{"A", PersonaMarathonCoach},
		{"a", PersonaMarathonCoach},
		{" marathon_coach ", PersonaMarathonCoach},
		{"A：マラソンコーチの専門家", PersonaMarathonCoach},
		{" a：マラソンコーチの専門家 ", PersonaMarathonCoach},
		{"B", PersonaSalesConsultant},
		{"SALES_CONSULTANT", PersonaSalesConsultant},
		{"B：営業コンサルの専門家", PersonaSalesConsultant},
		{"b：営業コンサルの専門家", PersonaSalesConsultant},
	}
	for _, tt := range tests {
		got, ok := LookupPersona(tt.id)
		if !ok {
			t.Fatalf("LookupPersona(%q) not recognized", tt.id)
		}
		if got != tt.want {
			t.Fatalf("LookupPersona(%q) = %s, want %s", tt.id, got, tt.want)
		}
	}
}

func TestUnrecognizedIdentifierFallsBackToDefault(t *testing.T) {
	t.Parallel()

	want := ResolveInstruction(DefaultPersona.Code())
	for _, id := range []string{"", "   ", "C", "chef", "Bogus persona"} {
		if _, ok := LookupPersona(id); ok {
			t.Fatalf("LookupPersona(%q) unexpectedly recognized", id)
		}
		if got := ResolvePersona(id); got != DefaultPersona {
			t.Fatalf("ResolvePersona(%q) = %s, want default", id, got)
		}
		if got := ResolveInstruction(id); got != want {
			t.Fatalf("ResolveInstruction(%q) did not fall back to default", id)
		}
	}
}

func TestOutOfRangePersonaUsesDefault(t *testing.T) {
	t.Parallel()

	p := Persona(42)
	if p.Valid() {
		t.Fatal("expected out-of-range persona to be invalid")
	}
	if p.Instruction() != DefaultPersona.Instruction() {
		t.Fatal("expected out-of-range persona to use default instruction")
	}
}
