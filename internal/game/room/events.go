package room

import "github.com/palemoky/draw-guess/internal/game/event"

// wordChoice 选词事件
type wordChoice struct {
	player *Player
	index  int
}

// 房间内部事件
var (
	topicPlayerGuessed     = event.NewTopic[*Player]("player-guessed")
	topicPlayerJoin        = event.NewTopic[*Player]("player-join")
	topicPlayerLeft        = event.NewTopic[*Player]("player-left")
	topicCurrentPlayerLeft = event.NewTopic[*Player]("current-player-left")
	topicWordChosen        = event.NewTopic[wordChoice]("word-chosen")
)
