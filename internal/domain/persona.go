// Package domain contains core domain types for the expert consultation app.
package domain

import "strings"

// Persona identifies an expert role whose system instruction is prepended to
// every model request.
type Persona int

const (
	// PersonaMarathonCoach is the marathon coach expert (code "A").
	PersonaMarathonCoach Persona = iota
	// PersonaSalesConsultant is the sales consultant expert (code "B").
	PersonaSalesConsultant

	personaCount
)

// DefaultPersona is used whenever an identifier cannot be resolved.
const DefaultPersona = PersonaMarathonCoach

type personaInfo struct {
	code        string
	slug        string
	label       string
	instruction string
}

// Indexed by Persona; the array length keeps the table in step with the enum.
var personaTable = [personaCount]personaInfo{
	PersonaMarathonCoach: {
		code:  "A",
		slug:  "marathon_coach",
		label: "A：マラソンコーチの専門家",
		instruction: "あなたは一流のマラソンコーチです。" +
			"市民ランナーから上級者まで、それぞれのレベルに合わせて、" +
			"トレーニングメニュー、フォーム、ペース配分、レース戦略、" +
			"ケガ予防、栄養・補給などについて、わかりやすく具体的にアドバイスしてください。" +
			"専門用語は必要に応じて簡単に説明し、日本語で丁寧に回答してください。",
	},
	PersonaSalesConsultant: {
		code:  "B",
		slug:  "sales_consultant",
		label: "B：営業コンサルの専門家",
		instruction: "あなたは優秀な営業コンサルタントです。" +
			"法人営業・個人営業問わず、営業戦略、商談の組み立て、ヒアリング、提案資料、" +
			"クロージング、リレーション構築、KPI設計などに詳しい専門家として振る舞ってください。" +
			"実務でそのまま使える具体例やトーク例も交え、日本語でわかりやすくアドバイスしてください。",
	},
}

// Personas returns every persona in selector order.
func Personas() []Persona {
	out := make([]Persona, 0, personaCount)
	for p := Persona(0); p < personaCount; p++ {
		out = append(out, p)
	}
	return out
}

// Valid reports whether p is one of the defined personas.
func (p Persona) Valid() bool {
	return p >= 0 && p < personaCount
}

func (p Persona) info() personaInfo {
	if !p.Valid() {
		return personaTable[DefaultPersona]
	}
	return personaTable[p]
}

// Code returns the short identifier ("A", "B") used by the form.
func (p Persona) Code() string { return p.info().code }

// Slug returns the machine-readable identifier used by the JSON API.
func (p Persona) Slug() string { return p.info().slug }

// Label returns the human-readable selector label.
func (p Persona) Label() string { return p.info().label }

// Instruction returns the system instruction for p.
// Out-of-range values yield the default persona's instruction.
func (p Persona) Instruction() string { return p.info().instruction }

// String implements fmt.Stringer.
func (p Persona) String() string { return p.Slug() }

// LookupPersona matches id against persona codes, slugs and labels.
// The boolean is false when id is not recognized.
func LookupPersona(id string) (Persona, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultPersona, false
	}
	for p := Persona(0); p < personaCount; p++ {
		info := personaTable[p]
		if strings.EqualFold(id, info.code) ||
			strings.EqualFold(id, info.slug) ||
			strings.EqualFold(id, info.label) {
			return p, true
		}
	}
	return DefaultPersona, false
}

// ResolvePersona is LookupPersona with the fallback applied: anything
// unrecognized, including the empty string, resolves to DefaultPersona.
func ResolvePersona(id string) Persona {
	p, _ := LookupPersona(id)
	return p
}

// ResolveInstruction returns the system instruction for id, falling back to
// the default persona's instruction.
func ResolveInstruction(id string) string {
	return ResolvePersona(id).Instruction()
}
