package tools

import (
	"context"
	"fmt"
	"strings"

	lctools "github.com/tmc/langchaingo/tools"
)

type CalculatorTool struct {
	calc lctools.Calculator
}

func NewCalculatorTool() *CalculatorTool {
	return &CalculatorTool{}
}

func (c *CalculatorTool) Name() string {
	return "calculator"
}

func (c *CalculatorTool) Description() string {
	return "Perform arithmetic calculations and solve equations"
}

func (c *CalculatorTool) Execute(ctx context.Context, input string) (string, error) {
	expr := strings.TrimSpace(input)
	if expr == "" {
		return "", fmt.Errorf("empty expression")
	}

	res, err := c.calc.Call(ctx, expr)
	if err != nil {
		return "", fmt.Errorf("calculation failed: %w", err)
	}
	return strings.TrimSpace(res), nil
}
