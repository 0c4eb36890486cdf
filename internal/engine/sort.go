package engine

import (
	"github.com/0x-Shashi/Forge-Flow/internal/domain"
)

// Order возвращает топологический порядок узлов по алгоритму Кана.
//
// Очередь FIFO засеивается узлами с нулевой входящей степенью в
// порядке их объявления в Workflow.Nodes; равенство разрешается
// порядком попадания в очередь. Узлы на цикле (и достижимые только
// через него) молча исключаются из результата: обнаружение циклов —
// обязанность валидатора, который вызывается раньше. Sequencer
// предполагает уже проверенный граф и деградирует до частичного
// порядка вместо ошибки.
func Order(g *Graph) []*domain.Node {
	wf := g.Workflow

	inDegree := make(map[string]int, len(wf.Nodes))
	for i := range wf.Nodes {
		id := wf.Nodes[i].ID
		inDegree[id] = g.InDegree(id)
	}

	queue := make([]string, 0, len(wf.Nodes))
	for i := range wf.Nodes {
		id := wf.Nodes[i].ID
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]*domain.Node, 0, len(wf.Nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		n, ok := g.Node(id)
		if !ok {
			continue
		}
		order = append(order, n)

		for _, next := range g.Successors(id) {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	return order
}
