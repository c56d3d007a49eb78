package strategy

import (
	"errors"
	"testing"

	"github.com/newthinker/tradelab/internal/core"
)

type mockStrategy struct {
	name    string
	signals []core.Signal
}

func (m *mockStrategy) Name() string        { return m.name }
func (m *mockStrategy) Description() string { return "mock strategy" }
func (m *mockStrategy) RequiredData() DataRequirements {
	return DataRequirements{PriceHistory: 2}
}
func (m *mockStrategy) Generate(points []core.PricePoint) ([]core.Signal, error) {
	return m.signals, nil
}

func mockFactory(name string) Factory {
	return func(cfg Config) (Strategy, error) {
		if _, err := cfg.Int("window", 1); err != nil {
			return nil, err
		}
		return &mockStrategy{name: name}, nil
	}
}

func TestEngine_RegisterAndNew(t *testing.T) {
	engine := NewEngine()
	engine.Register("mock", mockFactory("mock"))

	s, err := engine.New("mock", Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "mock" {
		t.Errorf("expected mock, got %s", s.Name())
	}
}

func TestEngine_NewUnknown(t *testing.T) {
	engine := NewEngine()

	_, err := engine.New("missing", Config{})
	if !errors.Is(err, core.ErrStrategyNotFound) {
		t.Errorf("expected ErrStrategyNotFound, got %v", err)
	}
}

func TestEngine_NewRejectsConfig(t *testing.T) {
	engine := NewEngine()
	engine.Register("mock", mockFactory("mock"))

	_, err := engine.New("mock", Config{Params: map[string]any{"window": "five"}})
	if !errors.Is(err, core.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestEngine_Names(t *testing.T) {
	engine := NewEngine()
	engine.Register("b", mockFactory("b"))
	engine.Register("a", mockFactory("a"))

	names := engine.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("expected [a b], got %v", names)
	}
}

func TestConfig_Int(t *testing.T) {
	tests := []struct {
		name    string
		params  map[string]any
		want    int
		wantErr bool
	}{
		{"missing uses default", nil, 7, false},
		{"int", map[string]any{"n": 3}, 3, false},
		{"int64", map[string]any{"n": int64(4)}, 4, false},
		{"whole float", map[string]any{"n": 5.0}, 5, false},
		{"fractional float", map[string]any{"n": 5.5}, 0, true},
		{"string", map[string]any{"n": "5"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Config{Params: tt.params}.Int("n", 7)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
