package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	MsgLoginRequest MessageType = "login_request" // 登录并加入房间
	MsgStartGame    MessageType = "start_game"    // 房主开始游戏
	MsgWordChosen   MessageType = "word_chosen"   // 画手选词
	MsgSendChat     MessageType = "send_chat"     // 聊天或猜词
	MsgOK           MessageType = "ok"            // 确认（客户端发送时忽略）
)

// 双向消息类型
const (
	MsgStop       MessageType = "stop"        // 停止游戏
	MsgDraw       MessageType = "draw"        // 绘画指令
	MsgSetOptions MessageType = "set_options" // 房间设置
)

// 服务端 → 客户端 消息类型
const (
	// 房间相关
	MsgLoginResponse MessageType = "login_response" // 登录成功，附带房间快照
	MsgPlayerJoin    MessageType = "player_join"    // 其他玩家加入
	MsgPlayerLeave   MessageType = "player_leave"   // 玩家离开
	MsgOwnerChange   MessageType = "owner_change"   // 房主变更

	// 游戏流程
	MsgNewRound      MessageType = "new_round"      // 新一轮开始
	MsgChooseWord    MessageType = "choose_word"    // 选词阶段
	MsgTurnStart     MessageType = "turn_start"     // 回合开始
	MsgRevealHint    MessageType = "reveal_hint"    // 揭示提示字母
	MsgTurnEnd       MessageType = "turn_end"       // 回合结束
	MsgGameEnd       MessageType = "game_end"       // 游戏结束
	MsgTimer         MessageType = "timer"          // 倒计时更新
	MsgChat          MessageType = "chat"           // 聊天消息
	MsgAlmost        MessageType = "almost"         // 猜词接近
	MsgPlayerGuessed MessageType = "player_guessed" // 玩家猜中

	// 错误
	MsgError MessageType = "error" // 错误消息
)

// GameState 房间的游戏阶段
type GameState string

const (
	GameStateNone         GameState = "none"
	GameStateNewRound     GameState = "new-round"
	GameStateChoosingWord GameState = "choosing-word"
	GameStateInTurn       GameState = "in-turn"
	GameStateEndTurn      GameState = "end-turn"
	GameStateEndGame      GameState = "end-game"
)

// LeaveReason 玩家离开原因
type LeaveReason string

const (
	LeaveReasonLeft LeaveReason = "left"
	LeaveReasonKick LeaveReason = "kick"
)

// TurnEndReason 回合结束原因
type TurnEndReason string

const (
	TurnEndTimeOut TurnEndReason = "time-out"
	TurnEndGuessed TurnEndReason = "guessed"
	TurnEndKick    TurnEndReason = "kick"
	TurnEndLeft    TurnEndReason = "left"
)
