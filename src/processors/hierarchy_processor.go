// backend/src/processors/hierarchy_processor.go
package processors

import (
	"strings"

	"github.com/username/painelfinanceiro/backend/src/models"
)

type hierarchyProcessorImpl struct{}

func NewHierarchyProcessor() HierarchyProcessor {
	return &hierarchyProcessorImpl{}
}

// Attach nests every subcategory whose id starts with "<category id>." under that category.
// File order is kept on both levels and the inputs are left untouched.
func (p *hierarchyProcessorImpl) Attach(categories, subcategories []models.FinancialRecord) []models.CategoryNode {
	nodes := make([]models.CategoryNode, 0, len(categories))
	for _, category := range categories {
		node := models.CategoryNode{
			FinancialRecord: category.Clone(),
			Subcategories:   []models.FinancialRecord{},
		}
		prefix := category.ID + "."
		for _, sub := range subcategories {
			if strings.HasPrefix(sub.ID, prefix) {
				node.Subcategories = append(node.Subcategories, sub.Clone())
			}
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// Orphans returns the subcategories that Attach places under no category.
func (p *hierarchyProcessorImpl) Orphans(categories, subcategories []models.FinancialRecord) []models.FinancialRecord {
	orphans := []models.FinancialRecord{}
	for _, sub := range subcategories {
		attached := false
		for _, category := range categories {
			if strings.HasPrefix(sub.ID, category.ID+".") {
				attached = true
				break
			}
		}
		if !attached {
			orphans = append(orphans, sub.Clone())
		}
	}
	return orphans
}
