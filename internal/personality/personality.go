// Package personality holds the fixed set of tutoring personas. The table
// is built once at startup and shared read-only by every component.
package personality

import (
	"sort"
)

// Keys of the enumerated personalities
const (
	Calm  = "calm"
	Angry = "angry"
	Cool  = "cool"
	Lazy  = "lazy"

	DefaultKey = Calm
)

// VoiceSettings are the synthesis parameters sent with every TTS request
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Config describes one tutoring persona
type Config struct {
	Key          string
	Name         string
	SystemPrompt string
	VoiceID      string
	Voice        VoiceSettings
}

// Table is an immutable lookup of personas by key
type Table struct {
	byKey map[string]Config
	order []string
}

// New builds a table from configs. Later duplicates replace earlier ones.
func New(configs ...Config) *Table {
	t := &Table{byKey: make(map[string]Config, len(configs))}
	for _, c := range configs {
		if _, seen := t.byKey[c.Key]; !seen {
			t.order = append(t.order, c.Key)
		}
		t.byKey[c.Key] = c
	}
	return t
}

// Get returns the persona for key and whether it exists
func (t *Table) Get(key string) (Config, bool) {
	c, ok := t.byKey[key]
	return c, ok
}

// Resolve returns the persona for key, the default persona for an empty key,
// and false for unknown keys.
func (t *Table) Resolve(key string) (Config, bool) {
	if key == "" {
		key = DefaultKey
	}
	return t.Get(key)
}

// List returns personas in declaration order
func (t *Table) List() []Config {
	out := make([]Config, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.byKey[k])
	}
	return out
}

// Keys returns the sorted persona keys
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.byKey))
	for k := range t.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default returns the built-in four personas
func Default() *Table {
	return New(
		Config{
			Key:  Calm,
			Name: "Calm Tutor",
			SystemPrompt: `You are a calm, patient math tutor. Speak gently and encouragingly.
Break every problem into small steps and check understanding before moving on.
Never hand over a final answer outright; guide the student toward it with questions and hints.
Keep replies short enough to read aloud comfortably.`,
			VoiceID: "21m00Tcm4TlvDq8ikWAM",
			Voice: VoiceSettings{
				Stability:       0.75,
				SimilarityBoost: 0.75,
				Style:           0.1,
				UseSpeakerBoost: true,
			},
		},
		Config{
			Key:  Angry,
			Name: "Strict Tutor",
			SystemPrompt: `You are a gruff, impatient math tutor who is secretly invested in the student's success.
Be blunt and demanding, point out careless mistakes directly, and push the student to try harder.
Never insult the student and never give the final answer away; make them work for it.
Keep replies short and punchy.`,
			VoiceID: "pNInz6obpgDQGcFmaJgB",
			Voice: VoiceSettings{
				Stability:       0.35,
				SimilarityBoost: 0.8,
				Style:           0.7,
				UseSpeakerBoost: true,
			},
		},
		Config{
			Key:  Cool,
			Name: "Cool Tutor",
			SystemPrompt: `You are a relaxed, upbeat math tutor with a casual, friendly style.
Use everyday examples and light humour to make ideas click.
Guide the student with hints rather than giving away answers.
Keep replies conversational and brief.`,
			VoiceID: "ErXwobaYiN019PkySvjV",
			Voice: VoiceSettings{
				Stability:       0.5,
				SimilarityBoost: 0.75,
				Style:           0.45,
				UseSpeakerBoost: true,
			},
		},
		Config{
			Key:  Lazy,
			Name: "Lazy Tutor",
			SystemPrompt: `You are a sleepy, low-energy math tutor who still knows the material well.
Answer with minimal effort and few words, sighing occasionally, but stay accurate.
Nudge the student toward the next step instead of solving the problem for them.`,
			VoiceID: "TxGEqnHWrfWFTfGW9XJX",
			Voice: VoiceSettings{
				Stability:       0.85,
				SimilarityBoost: 0.6,
				Style:           0.05,
				UseSpeakerBoost: false,
			},
		},
	)
}
