package roulette

type WagerResult struct {
	ID          string `json:"wager_id"`
	AccountID   int64  `json:"account_id"`
	Selector    string `json:"selector"`
	Amount      int64  `json:"amount"`
	DrawNumber  int    `json:"draw_number"`
	DrawColor   Color  `json:"draw_color"`
	Won         bool   `json:"won"`
	GrossPayout int64  `json:"gross_payout"`
	NetDelta    int64  `json:"net_delta"`
	NewCash     int64  `json:"new_cash"`
}
