package engine

import (
	"github.com/0x-Shashi/Forge-Flow/internal/domain"
)

// Graph — индекс графа workflow: lookup узлов по ID и adjacency-списки.
//
// Рёбра, ссылающиеся на несуществующие узлы, в индекс не попадают:
// о них сообщает валидатор, а sequencer и раннер работают только с
// корректной частью графа.
type Graph struct {
	// Workflow — исходное определение.
	Workflow *domain.Workflow

	nodes map[string]*domain.Node

	// succ — исходящие рёбра: source → targets в порядке объявления.
	succ map[string][]string

	// pred — входящие рёбра: target → sources в порядке объявления.
	pred map[string][]string
}

// NewGraph строит индекс по workflow.
func NewGraph(wf *domain.Workflow) *Graph {
	g := &Graph{
		Workflow: wf,
		nodes:    make(map[string]*domain.Node, len(wf.Nodes)),
		succ:     make(map[string][]string),
		pred:     make(map[string][]string),
	}

	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		g.nodes[n.ID] = n
	}

	for _, e := range wf.Edges {
		if _, ok := g.nodes[e.Source]; !ok {
			continue
		}
		if _, ok := g.nodes[e.Target]; !ok {
			continue
		}
		g.succ[e.Source] = append(g.succ[e.Source], e.Target)
		g.pred[e.Target] = append(g.pred[e.Target], e.Source)
	}

	return g
}

// Node возвращает узел по ID.
func (g *Graph) Node(id string) (*domain.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Successors возвращает ID узлов, в которые ведут рёбра из id,
// в порядке объявления рёбер.
func (g *Graph) Successors(id string) []string {
	return g.succ[id]
}

// Predecessors возвращает ID узлов, из которых ведут рёбра в id,
// в порядке объявления рёбер. Порядок определяет порядок элементов
// входного среза при нескольких предшественниках.
func (g *Graph) Predecessors(id string) []string {
	return g.pred[id]
}

// InDegree возвращает количество входящих рёбер узла.
func (g *Graph) InDegree(id string) int {
	return len(g.pred[id])
}

// HasEdge возвращает true, если узел участвует хотя бы в одном ребре
// (в любом направлении).
func (g *Graph) HasEdge(id string) bool {
	return len(g.succ[id]) > 0 || len(g.pred[id]) > 0
}
