package gen

import (
	"context"
)

// File is one generated artifact: a name relative to the target
// directory and its full content.
type File struct {
	Name    string
	Content []byte
}

// Emitter produces artifacts from a graph. The source, DDL and
// documentation emitters all satisfy it.
type Emitter interface {
	Emit(g *Graph) ([]File, error)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(g *Graph) ([]File, error)

// Emit implements Emitter.
func (f EmitterFunc) Emit(g *Graph) ([]File, error) { return f(g) }

// Generate runs the emitters against the graph and writes every
// produced artifact under the graph's target directory. Emission runs
// to completion before the first byte is written, so an emitter
// failure produces no partial artifact set.
func Generate(ctx context.Context, g *Graph, emitters ...Emitter) error {
	var files []File
	for _, e := range emitters {
		fs, err := e.Emit(g)
		if err != nil {
			return err
		}
		files = append(files, fs...)
	}
	return Write(ctx, g.Target, files)
}
