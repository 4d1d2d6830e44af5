package processors

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/username/painelfinanceiro/backend/src/logger"
	"github.com/username/painelfinanceiro/backend/src/models"
	"gopkg.in/yaml.v3"
)

// ClassificationRules configures how rows are told apart as income or expense.
// Rules are tried in order: id prefix, description keyword, majority of positive months.
type ClassificationRules struct {
	IncomePrefixes   []string `yaml:"income_prefixes"`
	IncomeKeywords   []string `yaml:"income_keywords"`
	MajorityPositive bool     `yaml:"majority_positive"`
}

// DefaultClassificationRules returns the rule set used when no rules file is configured.
func DefaultClassificationRules() ClassificationRules {
	return ClassificationRules{
		IncomePrefixes:   []string{"016", "017", "3"},
		IncomeKeywords:   []string{"receita", "entrada", "renda", "salário", "vendas", "faturamento", "recebimentos"},
		MajorityPositive: true,
	}
}

// LoadClassificationRules reads rules from a YAML file. An empty path or a missing file
// yields the defaults; keys absent from the file keep their default value.
func LoadClassificationRules(path string) (ClassificationRules, error) {
	rules := DefaultClassificationRules()
	if path == "" {
		return rules, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.L.Warn("Classification rules file not found, using defaults", "path", path)
			return rules, nil
		}
		return rules, fmt.Errorf("reading classification rules %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return DefaultClassificationRules(), fmt.Errorf("parsing classification rules %s: %w", path, err)
	}
	logger.L.Info("Classification rules loaded", "path", path, "prefixes", len(rules.IncomePrefixes), "keywords", len(rules.IncomeKeywords))
	return rules, nil
}

type ruleClassifier struct {
	rules    ClassificationRules
	keywords []string
}

// NewClassifier creates a Classifier applying rules.
func NewClassifier(rules ClassificationRules) Classifier {
	keywords := make([]string, 0, len(rules.IncomeKeywords))
	for _, k := range rules.IncomeKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	return &ruleClassifier{rules: rules, keywords: keywords}
}

func (c *ruleClassifier) Classify(id, description string, values models.MonthlyValues) (models.RecordKind, models.Classification) {
	kind := models.KindCategory
	if strings.Contains(id, ".") {
		kind = models.KindSubcategory
	}
	return kind, c.classification(id, description, values)
}

func (c *ruleClassifier) classification(id, description string, values models.MonthlyValues) models.Classification {
	for _, prefix := range c.rules.IncomePrefixes {
		if prefix != "" && strings.HasPrefix(id, prefix) {
			return models.Income
		}
	}

	lowerDesc := strings.ToLower(description)
	for _, keyword := range c.keywords {
		if strings.Contains(lowerDesc, keyword) {
			return models.Income
		}
	}

	if c.rules.MajorityPositive && len(values) > 0 {
		positives := 0
		for _, mv := range values {
			if mv.Value > 0 {
				positives++
			}
		}
		if positives*2 > len(values) {
			return models.Income
		}
	}
	return models.Expense
}
