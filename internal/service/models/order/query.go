package order

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Ids         []int64  `json:"ids,omitempty"`
	ShopIds     []int64  `json:"shopIds,omitempty"`
	CustomerIds []int64  `json:"customerIds,omitempty"`
	Statuses    []Status `json:"statuses,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	Offset      int      `json:"offset,omitempty"`
}

// TerminalOnly narrows the filter to orders in a terminal status,
// as used by the order history views.
func (q QueryOrdersModel) TerminalOnly() QueryOrdersModel {
	q.Statuses = []Status{StatusCompleted, StatusRejected, StatusCancelled}

	return q
}
