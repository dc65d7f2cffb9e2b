package protocol

// ClientMessage 客户端可发送的消息集合（封闭联合类型）
type ClientMessage interface {
	MessageType() MessageType
	clientMessage()
}

func (*LoginRequestPayload) MessageType() MessageType { return MsgLoginRequest }
func (*StartGamePayload) MessageType() MessageType    { return MsgStartGame }
func (*StopPayload) MessageType() MessageType         { return MsgStop }
func (*WordChosenPayload) MessageType() MessageType   { return MsgWordChosen }
func (*SendChatPayload) MessageType() MessageType     { return MsgSendChat }
func (*DrawPayload) MessageType() MessageType         { return MsgDraw }
func (*SetOptionsPayload) MessageType() MessageType   { return MsgSetOptions }
func (*OKPayload) MessageType() MessageType           { return MsgOK }

func (*LoginRequestPayload) clientMessage() {}
func (*StartGamePayload) clientMessage()    {}
func (*StopPayload) clientMessage()         {}
func (*WordChosenPayload) clientMessage()   {}
func (*SendChatPayload) clientMessage()     {}
func (*DrawPayload) clientMessage()         {}
func (*SetOptionsPayload) clientMessage()   {}
func (*OKPayload) clientMessage()           {}
