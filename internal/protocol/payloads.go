package protocol

// --- 公共结构 ---

// GameSettings 房间游戏设置（时间单位：秒）
type GameSettings struct {
	Timer           int `json:"timer"`
	ChooseWordTimer int `json:"choose_word_timer"`
	MaxHints        int `json:"max_hints"`
	RoundsPerGame   int `json:"rounds_per_game"`
}

// DefaultSettings 返回默认房间设置
func DefaultSettings() GameSettings {
	return GameSettings{
		Timer:           300,
		ChooseWordTimer: 10,
		MaxHints:        5,
		RoundsPerGame:   3,
	}
}

// TimerUpdate 倒计时（Unix 毫秒），未设置时为 -1
type TimerUpdate struct {
	Start   int64 `json:"start"`
	Expires int64 `json:"expires"`
}

// NoTimer 表示没有进行中的倒计时
var NoTimer = TimerUpdate{Start: -1, Expires: -1}

// PlayerInfo 玩家信息
type PlayerInfo struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Score      int               `json:"score"`
	HasGuessed bool              `json:"has_guessed"`
	AvatarBG   int               `json:"avatar_bg"`
	Avatar     []DrawInstruction `json:"avatar"`
}

// ScoreEntry 单个玩家的得分
type ScoreEntry struct {
	PlayerID int `json:"player_id"`
	Points   int `json:"points"`
}

// --- 客户端请求 Payloads ---

// LoginRequestPayload 登录请求，RoomID 为空时由服务器分配公共房间
type LoginRequestPayload struct {
	RoomID   string            `json:"room_id,omitempty"`
	Name     string            `json:"name"`
	Avatar   []DrawInstruction `json:"avatar"`
	AvatarBG int               `json:"avatar_bg"`
}

// StartGamePayload 开始游戏请求
type StartGamePayload struct{}

// StopPayload 停止游戏（请求与广播共用）
type StopPayload struct{}

// WordChosenPayload 选词请求
type WordChosenPayload struct {
	WordIndex int `json:"word_index"`
}

// SendChatPayload 聊天或猜词
type SendChatPayload struct {
	Content string `json:"content"`
}

// DrawPayload 绘画指令（请求与转发共用）
type DrawPayload struct {
	Instructions []DrawInstruction `json:"instructions"`
}

// SetOptionsPayload 修改设置（请求与广播共用）
type SetOptionsPayload struct {
	Settings GameSettings `json:"settings"`
}

// OKPayload 请求成功确认
type OKPayload struct {
	ResponseTo MessageType `json:"response_to"`
}

// --- 服务端响应 Payloads ---

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// LoginResponsePayload 登录成功响应（房间快照）
type LoginResponsePayload struct {
	Settings         GameSettings      `json:"settings"`
	RoomID           string            `json:"room_id"`
	Players          []PlayerInfo      `json:"players"`
	Me               int               `json:"me"`
	Owner            int               `json:"owner"`
	State            GameState         `json:"state"`
	CurrentPlayer    int               `json:"current_player"`
	Round            int               `json:"round"`
	Timer            TimerUpdate       `json:"timer"`
	WordHint         string            `json:"word_hint"`
	DrawInstructions []DrawInstruction `json:"draw_instructions"`
}

// PlayerJoinPayload 玩家加入通知
type PlayerJoinPayload struct {
	ID       int               `json:"id"`
	Name     string            `json:"name"`
	AvatarBG int               `json:"avatar_bg"`
	Avatar   []DrawInstruction `json:"avatar"`
}

// PlayerLeavePayload 玩家离开通知
type PlayerLeavePayload struct {
	Reason LeaveReason `json:"reason"`
	ID     int         `json:"id"`
}

// OwnerChangePayload 房主变更通知，PlayerID 为 -1 表示房间无人
type OwnerChangePayload struct {
	PlayerID int `json:"player_id"`
}

// NewRoundPayload 新一轮开始
type NewRoundPayload struct {
	Round int         `json:"round"`
	Timer TimerUpdate `json:"timer"`
}

// ChooseWordPayload 选词阶段，仅画手收到 Words
type ChooseWordPayload struct {
	CurrentPlayerID int         `json:"current_player_id"`
	Words           []string    `json:"words,omitempty"`
	Timer           TimerUpdate `json:"timer"`
}

// TurnStartPayload 回合开始，画手收到完整词语，其他人收到遮罩
type TurnStartPayload struct {
	CurrentPlayerID int         `json:"current_player_id"`
	WordHint        string      `json:"word_hint"`
	Timer           TimerUpdate `json:"timer"`
}

// RevealHintPayload 提示更新
type RevealHintPayload struct {
	WordHint string `json:"word_hint"`
}

// TurnEndPayload 回合结算
type TurnEndPayload struct {
	Reason TurnEndReason `json:"reason"`
	Word   string        `json:"word"`
	Scores []ScoreEntry  `json:"scores"`
	Timer  TimerUpdate   `json:"timer"`
}

// GameEndPayload 游戏结束排行
type GameEndPayload struct {
	Scores []ScoreEntry `json:"scores"`
}

// TimerPayload 倒计时调整
type TimerPayload struct {
	Timer TimerUpdate `json:"timer"`
}

// ChatPayload 聊天消息
type ChatPayload struct {
	PlayerID int    `json:"player_id"`
	Content  string `json:"content"`
}

// AlmostPayload 猜词接近提示
type AlmostPayload struct {
	Word string `json:"word"`
}

// PlayerGuessedPayload 玩家猜中，只有猜中者本人收到 Word
type PlayerGuessedPayload struct {
	PlayerID int    `json:"player_id"`
	Word     string `json:"word,omitempty"`
}

// --- HTTP 查询结果 ---

// RoomListItem 公共房间列表项
type RoomListItem struct {
	RoomID      string    `json:"room_id"`
	PlayerCount int       `json:"player_count"`
	MaxPlayers  int       `json:"max_players"`
	State       GameState `json:"state"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	TotalPoints int64  `json:"total_points"`
	GamesPlayed int64  `json:"games_played"`
	Wins        int64  `json:"wins"`
	BestScore   int64  `json:"best_score"`
}
