package services

import (
	"fmt"
	"sort"

	"github.com/vsinha/replenish/pkg/domain/entities"
)

// ValidationResult contains the results of kit BOM validation
type ValidationResult struct {
	HasCycles      bool
	CyclePaths     [][]entities.SKU
	DuplicateLines []entities.KitLine
	NestedKits     []entities.SKU
	Errors         []string
}

// ValidateKitLines checks a kit bill-of-materials for cycles and duplicate pairs.
// Cycles are errors; duplicates and nested kits are reported for information.
func ValidateKitLines(lines []entities.KitLine) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:     make([][]entities.SKU, 0),
		DuplicateLines: make([]entities.KitLine, 0),
		NestedKits:     make([]entities.SKU, 0),
		Errors:         make([]string, 0),
	}

	adjacency := buildAdjacencyMap(lines)

	result.CyclePaths = detectCycles(adjacency)
	result.HasCycles = len(result.CyclePaths) > 0
	result.DuplicateLines = detectDuplicateLines(lines)
	result.NestedKits = detectNestedKits(adjacency)

	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, fmt.Sprintf("kit cycle detected: %v", cycle))
	}

	return result
}

// buildAdjacencyMap creates a map of kit -> component relationships
func buildAdjacencyMap(lines []entities.KitLine) map[entities.SKU][]entities.SKU {
	adjacency := make(map[entities.SKU][]entities.SKU)

	for _, line := range lines {
		children := adjacency[line.KitSKU]

		found := false
		for _, child := range children {
			if child == line.ComponentSKU {
				found = true
				break
			}
		}

		if !found {
			adjacency[line.KitSKU] = append(children, line.ComponentSKU)
		}
	}

	return adjacency
}

func sortedKeys(adjacency map[entities.SKU][]entities.SKU) []entities.SKU {
	keys := make([]entities.SKU, 0, len(adjacency))
	for k := range adjacency {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// detectCycles uses DFS to find cycles; kits are visited in sorted order
func detectCycles(adjacency map[entities.SKU][]entities.SKU) [][]entities.SKU {
	visited := make(map[entities.SKU]bool)
	onStack := make(map[entities.SKU]bool)
	cycles := make([][]entities.SKU, 0)

	for _, kit := range sortedKeys(adjacency) {
		if !visited[kit] {
			dfsDetectCycle(kit, adjacency, visited, onStack, nil, &cycles)
		}
	}

	return cycles
}

func dfsDetectCycle(
	current entities.SKU,
	adjacency map[entities.SKU][]entities.SKU,
	visited map[entities.SKU]bool,
	onStack map[entities.SKU]bool,
	path []entities.SKU,
	cycles *[][]entities.SKU,
) {
	visited[current] = true
	onStack[current] = true
	path = append(path, current)

	for _, child := range adjacency[current] {
		if !visited[child] {
			dfsDetectCycle(child, adjacency, visited, onStack, path, cycles)
			continue
		}
		if !onStack[child] {
			continue
		}
		for i, sku := range path {
			if sku == child {
				cycle := make([]entities.SKU, 0, len(path)-i+1)
				cycle = append(cycle, path[i:]...)
				cycle = append(cycle, child)
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	onStack[current] = false
}

// detectDuplicateLines finds repeated (kit, component) pairs after the first
func detectDuplicateLines(lines []entities.KitLine) []entities.KitLine {
	type pair struct{ kit, component entities.SKU }
	seen := make(map[pair]bool)
	duplicates := make([]entities.KitLine, 0)

	for _, line := range lines {
		key := pair{line.KitSKU, line.ComponentSKU}
		if seen[key] {
			duplicates = append(duplicates, line)
			continue
		}
		seen[key] = true
	}

	return duplicates
}

// detectNestedKits lists components that are themselves kits, sorted
func detectNestedKits(adjacency map[entities.SKU][]entities.SKU) []entities.SKU {
	seen := make(map[entities.SKU]bool)
	nested := make([]entities.SKU, 0)
	for _, children := range adjacency {
		for _, child := range children {
			if _, isKit := adjacency[child]; isKit && !seen[child] {
				seen[child] = true
				nested = append(nested, child)
			}
		}
	}
	sort.Slice(nested, func(i, j int) bool { return nested[i] < nested[j] })
	return nested
}
