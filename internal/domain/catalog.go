package domain

// BoardGame is a board game record.
type BoardGame struct {
	BaseModel
	Year              int     `json:"year"`
	MinPlayers        int     `json:"minPlayers"`
	MaxPlayers        int     `json:"maxPlayers"`
	PlayTime          int     `json:"playTime"`
	MinAge            int     `json:"minAge"`
	UsersRated        int     `json:"usersRated"`
	RatingAverage     float64 `json:"ratingAverage"`
	BGGRank           int     `gorm:"column:bgg_rank" json:"bggRank"`
	ComplexityAverage float64 `json:"complexityAverage"`
	OwnedUsers        int     `json:"ownedUsers"`
}

// Domain is a board game domain (e.g. "Strategy Games").
type Domain struct {
	BaseModel
}

// Mechanic is a board game mechanic (e.g. "Deck Building").
type Mechanic struct {
	BaseModel
}
