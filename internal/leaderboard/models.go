package leaderboard

type Entry struct {
	Rank      int   `json:"rank"`
	AccountID int64 `json:"account_id"`
	Cash      int64 `json:"cash"`
	Bank      int64 `json:"bank"`
	Total     int64 `json:"total"`
}
