// Package rdf reads CIDOC-CRM encoded Turtle files and reconstructs person
// biographical events (birth, death, marriage, occupation) from the graph's
// event-entity pattern.
package rdf

import (
	"fmt"
	"io"

	"github.com/knakk/rdf"
)

// graph is an in-memory index over a decoded Turtle triple set, built once
// up front so fact reconstruction can do explicit indexed lookups instead
// of re-scanning triples for every traversal step.
type graph struct {
	// bySubject maps a subject term's string form to every triple with
	// that subject.
	bySubject map[string][]rdf.Triple
	// byTypeSubject maps an rdf:type object value to the subjects
	// asserted to have that type.
	byTypeSubject map[string][]rdf.Triple
}

const rdfType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

func newGraph() *graph {
	return &graph{
		bySubject:     make(map[string][]rdf.Triple),
		byTypeSubject: make(map[string][]rdf.Triple),
	}
}

// parse decodes every triple in r as Turtle and indexes it.
func parse(r io.Reader) (*graph, error) {
	g := newGraph()
	dec := rdf.NewTripleDecoder(r, rdf.Turtle)
	for {
		t, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode turtle: %w", err)
		}
		subj := t.Subj.String()
		g.bySubject[subj] = append(g.bySubject[subj], t)
		if t.Pred.String() == rdfType {
			g.byTypeSubject[t.Obj.String()] = append(g.byTypeSubject[t.Obj.String()], t)
		}
	}
	return g, nil
}

// subjectsOfType returns every subject term asserted to have rdf:type
// typeIRI.
func (g *graph) subjectsOfType(typeIRI string) []rdf.Term {
	ts := g.byTypeSubject[typeIRI]
	out := make([]rdf.Term, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Subj)
	}
	return out
}

// objects returns every object value asserted for (subj, pred).
func (g *graph) objects(subj rdf.Term, pred string) []rdf.Term {
	var out []rdf.Term
	for _, t := range g.bySubject[subj.String()] {
		if t.Pred.String() == pred {
			out = append(out, t.Obj)
		}
	}
	return out
}

// firstObject returns the first object asserted for (subj, pred), or
// (nil, false) if none exists.
func (g *graph) firstObject(subj rdf.Term, pred string) (rdf.Term, bool) {
	objs := g.objects(subj, pred)
	if len(objs) == 0 {
		return nil, false
	}
	return objs[0], true
}

// firstObjectString returns the lexical form of the first object asserted
// for (subj, pred).
func (g *graph) firstObjectString(subj rdf.Term, pred string) (string, bool) {
	o, ok := g.firstObject(subj, pred)
	if !ok {
		return "", false
	}
	return o.String(), true
}
