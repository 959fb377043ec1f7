package tokenbudget

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	mw "mcpchat/internal/middleware"
)

// EnvBudget names the variable holding the prompt budget in estimated tokens.
const EnvBudget = "MCPCHAT_TOKEN_BUDGET"

func init() {
	// Auto-register middleware so it is picked up via middlewares/autoload.
	mw.Register(BudgetLimiter{})
}

// BudgetLimiter cancels a turn before a completion whose prompt is estimated
// to exceed the budget set in MCPCHAT_TOKEN_BUDGET. Without a budget it is
// skipped.
type BudgetLimiter struct {
	// Budget overrides the environment when positive.
	Budget int
}

func (BudgetLimiter) ID() string    { return "token_budget" }
func (BudgetLimiter) Priority() int { return 90 }

func (b BudgetLimiter) ShouldLoad(_ context.Context, e *mw.Event) bool {
	return e != nil && e.Name == mw.EventBeforeCompletion && b.budget() > 0
}

func (b BudgetLimiter) OnEvent(_ context.Context, e *mw.Event) (mw.Decision, error) {
	if e == nil || e.Name != mw.EventBeforeCompletion || e.Request == nil {
		return mw.Decision{}, nil
	}
	budget := b.budget()
	if budget <= 0 {
		return mw.Decision{}, nil
	}

	used := 0
	for _, m := range e.Request.Messages {
		used += mw.EstimateTokens(m.Content)
		for _, c := range m.ToolCalls {
			used += mw.EstimateTokens(c.Arguments.Text())
		}
	}
	if used <= budget {
		return mw.Decision{Reason: fmt.Sprintf("token_budget: ~%d of %d tokens", used, budget)}, nil
	}
	return mw.Decision{
		Cancel: true,
		Reason: fmt.Sprintf("token_budget: prompt needs ~%d tokens, budget is %d (use /clear to start over)", used, budget),
	}, nil
}

func (b BudgetLimiter) budget() int {
	if b.Budget > 0 {
		return b.Budget
	}
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(EnvBudget)))
	if err != nil {
		return 0
	}
	return n
}
