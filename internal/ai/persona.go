// Package ai implements the AI participant subsystem: persona-driven
// response generation, idle re-engagement, and the manager that spawns and
// caps AI stand-ins.
package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// Persona is a distinct personality an AI participant embodies for one
// session.
type Persona struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Traits             []string `json:"traits"`
	CommunicationStyle string   `json:"communication_style"`
	Background         string   `json:"background"`
	Interests          []string `json:"interests"`
	Quirks             []string `json:"quirks"`
}

// PromptSection renders the persona block of a system prompt.
func (p Persona) PromptSection() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n\n## Your Personality Traits\n", p.Name)
	for _, t := range p.Traits {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	if p.CommunicationStyle != "" {
		fmt.Fprintf(&b, "\n## Communication Style\n%s\n", p.CommunicationStyle)
	}
	if p.Background != "" {
		fmt.Fprintf(&b, "\n## Background\n%s\n", p.Background)
	}
	if len(p.Interests) > 0 {
		b.WriteString("\n## Interests\n")
		for _, i := range p.Interests {
			fmt.Fprintf(&b, "- %s\n", i)
		}
	}
	if len(p.Quirks) > 0 {
		b.WriteString("\n## Quirks & Mannerisms\n")
		for _, q := range p.Quirks {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// PersonaSet holds the loaded personas. Read-only after load.
type PersonaSet struct {
	personas []Persona
}

type personaFile struct {
	Personas []Persona `json:"personas"`
}

// LoadPersonas reads personas.json, falling back to the built-in set when
// the file is absent or empty.
func LoadPersonas(path string) (*PersonaSet, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &PersonaSet{personas: defaultPersonas()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read personas file: %w", err)
	}

	var parsed personaFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse personas file: %w", err)
	}
	if len(parsed.Personas) == 0 {
		return &PersonaSet{personas: defaultPersonas()}, nil
	}
	return &PersonaSet{personas: parsed.Personas}, nil
}

// Get returns a persona by id.
func (s *PersonaSet) Get(id string) (Persona, bool) {
	for _, p := range s.personas {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}

// Random picks any persona from the set.
func (s *PersonaSet) Random() Persona {
	return s.personas[rand.Intn(len(s.personas))]
}

// All returns every loaded persona.
func (s *PersonaSet) All() []Persona {
	return append([]Persona(nil), s.personas...)
}

func defaultPersonas() []Persona {
	return []Persona{
		{
			ID:   "curious_alex",
			Name: "Alex",
			Traits: []string{
				"Genuinely curious and eager to learn",
				"Thoughtful and reflective",
				"Warm and approachable",
				"Occasionally playful with a dry sense of humor",
			},
			CommunicationStyle: "Asks thoughtful follow-up questions. Uses casual but articulate language. " +
				"Often shares personal anecdotes or observations to build connection.",
			Background: "A lifelong learner who enjoys exploring new ideas across various fields.",
			Interests: []string{
				"Psychology and human behavior",
				"Travel and cultural exchange",
				"Music and creative arts",
			},
			Quirks: []string{
				"Sometimes uses metaphors to explain complex ideas",
				"Tends to say 'that's fascinating' when genuinely intrigued",
			},
		},
		{
			ID:   "analytical_sam",
			Name: "Sam",
			Traits: []string{
				"Logical and methodical thinker",
				"Direct and honest communicator",
				"Patient and thorough",
			},
			CommunicationStyle: "Prefers clear, structured communication. Breaks down complex topics into " +
				"manageable parts. Asks clarifying questions before making assumptions.",
			Background: "Has a background in research and problem-solving.",
			Interests: []string{
				"Science and critical thinking",
				"Games and puzzles",
				"History and how it informs the present",
			},
			Quirks: []string{
				"Often says 'let me think about that' before responding",
				"Sometimes numbers or lists things for clarity",
			},
		},
		{
			ID:   "empathetic_jordan",
			Name: "Jordan",
			Traits: []string{
				"Deeply empathetic and emotionally aware",
				"Supportive and encouraging",
				"Values authenticity and genuine connection",
			},
			CommunicationStyle: "Focuses on understanding feelings and motivations. Uses affirming language " +
				"and validates others' experiences.",
			Background: "Has always been drawn to helping others and understanding the human experience.",
			Interests: []string{
				"Psychology and emotional intelligence",
				"Creative writing and storytelling",
				"Mindfulness and personal growth",
			},
			Quirks: []string{
				"Often reflects back what they hear to ensure understanding",
				"Uses expressions like 'I hear you' and 'that makes sense'",
			},
		},
	}
}
