package googleEmbedding

import "testing"

func TestEnsureDimension(t *testing.T) {
	tests := []struct {
		name    string
		values  []float32
		want    int32
		wantErr bool
	}{
		{"Exact", make([]float32, 1536), 1536, false},
		{"Short", make([]float32, 768), 1536, true},
		{"Long", make([]float32, 3072), 1536, true},
		{"Empty", nil, 1536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vector, err := ensureDimension(tt.values, tt.want)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected a dimension error for %d values", len(tt.values))
				}
				return
			}
			if err != nil {
				t.Fatalf("ensureDimension failed: %v", err)
			}
			if len(vector) != int(tt.want) {
				t.Errorf("got %d values, want %d", len(vector), tt.want)
			}
		})
	}
}
