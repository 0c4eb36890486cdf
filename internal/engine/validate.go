package engine

import (
	"fmt"

	"github.com/0x-Shashi/Forge-Flow/internal/domain"
)

// ValidationResult — итог статической проверки workflow.
//
// Ошибки накапливаются в список: валидатор никогда не паникует и не
// возвращает error. Workflow допускается к выполнению только при
// Valid == true.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Validate проверяет определение workflow перед выполнением.
//
// Проверки:
//   - workflow задан и содержит хотя бы один узел (иначе ранний выход)
//   - присутствует хотя бы один trigger-узел
//   - рёбра ссылаются только на существующие узлы
//   - нет изолированных узлов (проверка не применяется к trigger и
//     action: action — терминальный узел, допустимо только входящее
//     ребро; ошибка возникает лишь при полном отсутствии рёбер)
//   - граф ацикличен (DFS со стеком рекурсии; о цикле сообщается
//     один раз, дальнейший обход прекращается)
//   - обязательные поля конфигурации по типу узла:
//     api — url, ai — prompt, logic — path
func Validate(wf *domain.Workflow) ValidationResult {
	errs := make([]string, 0)

	if wf == nil {
		errs = append(errs, "workflow is required")
		return ValidationResult{Valid: false, Errors: errs}
	}

	if len(wf.Nodes) == 0 {
		errs = append(errs, "workflow must have at least one node")
		return ValidationResult{Valid: false, Errors: errs}
	}

	hasTrigger := false
	for i := range wf.Nodes {
		if wf.Nodes[i].Kind == domain.KindTrigger {
			hasTrigger = true
			break
		}
	}
	if !hasTrigger {
		errs = append(errs, "workflow must have at least one trigger node")
	}

	g := NewGraph(wf)

	for _, e := range wf.Edges {
		if _, ok := g.Node(e.Source); !ok {
			errs = append(errs, fmt.Sprintf("edge references unknown node %q", e.Source))
		}
		if _, ok := g.Node(e.Target); !ok {
			errs = append(errs, fmt.Sprintf("edge references unknown node %q", e.Target))
		}
	}

	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		if n.Kind == domain.KindTrigger || n.Kind == domain.KindAction {
			continue
		}
		if !g.HasEdge(n.ID) {
			errs = append(errs, fmt.Sprintf("node %q is disconnected", n.Label()))
		}
	}

	if hasCycle(g, wf) {
		errs = append(errs, "workflow contains a cycle (loops are not allowed)")
	}

	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		switch n.Kind {
		case domain.KindAPI:
			if n.ConfigString("url") == "" {
				errs = append(errs, fmt.Sprintf("api node %q is missing url", n.Label()))
			}
		case domain.KindAI:
			if n.ConfigString("prompt") == "" {
				errs = append(errs, fmt.Sprintf("ai node %q is missing prompt", n.Label()))
			}
		case domain.KindLogic:
			if n.ConfigString("path") == "" {
				errs = append(errs, fmt.Sprintf("logic node %q is missing path", n.Label()))
			}
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// hasCycle выполняет DFS со стеком рекурсии по всем узлам графа.
// Возвращает true при первом найденном back-ребре.
func hasCycle(g *Graph, wf *domain.Workflow) bool {
	visited := make(map[string]bool, len(wf.Nodes))
	onStack := make(map[string]bool, len(wf.Nodes))

	var visit func(id string) bool
	visit = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, next := range g.Successors(id) {
			if !visited[next] {
				if visit(next) {
					return true
				}
			} else if onStack[next] {
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for i := range wf.Nodes {
		id := wf.Nodes[i].ID
		if !visited[id] && visit(id) {
			return true
		}
	}
	return false
}
