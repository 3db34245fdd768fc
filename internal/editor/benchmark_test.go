package editor

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// generateNestedJSON creates a deeply nested JSON structure for benchmarking
func generateNestedJSON(depth int, width int) map[string]interface{} {
	if depth <= 0 {
		return map[string]interface{}{
			"leaf_value": "data",
			"count":      depth + width,
			"enabled":    width%2 == 0,
			"tags":       []interface{}{"a", "b", 1.5, nil},
		}
	}

	result := make(map[string]interface{})
	for i := 0; i < width; i++ {
		key := fmt.Sprintf("nested_%d_%d", depth, i)
		result[key] = generateNestedJSON(depth-1, width)
	}
	return result
}

// generateWideArray creates an array of many small objects
func generateWideArray(count int) []interface{} {
	result := make([]interface{}, 0, count)
	for i := 0; i < count; i++ {
		result = append(result, map[string]interface{}{
			"id":    i,
			"name":  fmt.Sprintf("Object %d", i),
			"value": float64(i) + 0.5,
		})
	}
	return result
}

func marshal(b *testing.B, v interface{}) string {
	b.Helper()
	data, err := json.Marshal(v)
	require.NoError(b, err)
	return string(data)
}

// BenchmarkLoad measures parsing and building the initial view
func BenchmarkLoad(b *testing.B) {
	shapes := []struct {
		name string
		doc  interface{}
	}{
		{"Depth3Width3", generateNestedJSON(3, 3)},
		{"Depth5Width2", generateNestedJSON(5, 2)},
		{"Array1000", generateWideArray(1000)},
	}

	for _, shape := range shapes {
		b.Run(shape.name, func(b *testing.B) {
			doc := marshal(b, shape.doc)
			e := New()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := e.Load(doc); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkPasteDelete measures a paste followed by the delete undoing it
func BenchmarkPasteDelete(b *testing.B) {
	e := New()
	require.NoError(b, e.Load(marshal(b, generateWideArray(500))))
	root := e.Tree().Root()
	require.NoError(b, e.Copy(root.Child(0)))
	target := root.Child(250)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n, err := e.PasteAfter(target)
		if err != nil {
			b.Fatal(err)
		}
		if err := e.Delete(n); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkExpandAll measures bulk expansion of a fresh tree
func BenchmarkExpandAll(b *testing.B) {
	doc := marshal(b, generateNestedJSON(4, 3))
	e := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		require.NoError(b, e.Load(doc))
		b.StartTimer()
		if _, err := e.Tree().ExpandAll(e.Tree().Root()); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSave measures serialization
func BenchmarkSave(b *testing.B) {
	e := New()
	require.NoError(b, e.Load(marshal(b, generateNestedJSON(4, 3))))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Save(); err != nil {
			b.Fatal(err)
		}
	}
}
