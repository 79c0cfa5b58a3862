package llm

import openrouter "github.com/revrost/go-openrouter"

const (
	ToolRegisterStatus  = "GetRegisterStatus"
	ToolClosingData     = "GetClosingData"
	ToolDailySales      = "GetDailySales"
	ToolPendingPayables = "ListPendingPayables"
	ToolSearchProducts  = "SearchProducts"
)

func ToolSchemas() []openrouter.Tool {
	return []openrouter.Tool{
		registerStatusTool(),
		closingDataTool(),
		dailySalesTool(),
		pendingPayablesTool(),
		searchProductsTool(),
	}
}

func function(name, description string, properties map[string]any, required ...string) openrouter.Tool {
	params := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		params["required"] = required
	}
	return openrouter.Tool{
		Type: openrouter.ToolTypeFunction,
		Function: &openrouter.FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
	}
}

func registerStatusTool() openrouter.Tool {
	return function(ToolRegisterStatus,
		"Current cash register session. Returns is_open and, when open, initial_amount, current_amount (cash in the drawer), cash_limit, opened_at and the number of transactions.",
		map[string]any{},
	)
}

func closingDataTool() openrouter.Tool {
	return function(ToolClosingData,
		"Expected balances for closing the open register: initial_amount, total_sales, total_withdrawals and expected_balance per payment method (cash, credit, debit, pix). Fails when no register is open.",
		map[string]any{},
	)
}

func dailySalesTool() openrouter.Tool {
	return function(ToolDailySales,
		"Today's sales: sales_count, total_sales, average_ticket and totals per payment method. Values may be up to a few minutes old unless refresh is true.",
		map[string]any{
			"refresh": map[string]any{
				"type":        "boolean",
				"description": "Skip the local cache and ask the server.",
			},
		},
	)
}

func pendingPayablesTool() openrouter.Tool {
	return function(ToolPendingPayables,
		"Unpaid accounts payable for a month: single bills with due date and value, and installment plans with remaining installments. Also returns the month totals.",
		map[string]any{
			"month": map[string]any{
				"type":        "string",
				"description": "Month as YYYY-MM. Defaults to the current month.",
			},
		},
	)
}

func searchProductsTool() openrouter.Tool {
	return function(ToolSearchProducts,
		"Find products by name or barcode. Returns id, name, barcode, category, price, stock and min_stock. Default limit: 10.",
		map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Name fragment or barcode (case-insensitive).",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of products (default 10, max 50).",
			},
		},
		"query",
	)
}
