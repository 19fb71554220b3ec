package core

import (
	"errors"
	"math"
	"testing"
)

func TestCosineSimilarity_SelfIsOne(t *testing.T) {
	vectors := [][]float32{
		{1, 0},
		{0.3, 0.4, 0.5},
		{-1, 2, -3, 4},
	}

	for _, v := range vectors {
		sim, err := CosineSimilarity(v, v)
		if err != nil {
			t.Fatalf("CosineSimilarity() error = %v", err)
		}
		if math.Abs(sim-1.0) > 1e-9 {
			t.Errorf("CosineSimilarity(v, v) = %v, want 1.0", sim)
		}
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float32{0.2, -0.7, 0.1}
	b := []float32{0.9, 0.3, -0.4}

	ab, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity() error = %v", err)
	}
	ba, err := CosineSimilarity(b, a)
	if err != nil {
		t.Fatalf("CosineSimilarity() error = %v", err)
	}
	if ab != ba {
		t.Errorf("similarity not symmetric: %v vs %v", ab, ba)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatalf("CosineSimilarity() error = %v", err)
	}
	if math.Abs(sim) > 1e-9 {
		t.Errorf("orthogonal similarity = %v, want 0", sim)
	}
}

func TestCosineSimilarity_Opposite(t *testing.T) {
	sim, err := CosineSimilarity([]float32{1, 2}, []float32{-1, -2})
	if err != nil {
		t.Fatalf("CosineSimilarity() error = %v", err)
	}
	if math.Abs(sim+1.0) > 1e-9 {
		t.Errorf("opposite similarity = %v, want -1.0", sim)
	}
}

func TestCosineSimilarity_Errors(t *testing.T) {
	tests := []struct {
		name    string
		a, b    []float32
		wantErr error
	}{
		{name: "empty a", a: nil, b: []float32{1}, wantErr: ErrVectorMismatch},
		{name: "empty b", a: []float32{1}, b: nil, wantErr: ErrVectorMismatch},
		{name: "dimension mismatch", a: []float32{1, 2}, b: []float32{1, 2, 3}, wantErr: ErrVectorMismatch},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 1}, wantErr: ErrZeroVector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CosineSimilarity(tt.a, tt.b)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CosineSimilarity() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
