package room

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/draw-guess/internal/game/event"
	"github.com/palemoky/draw-guess/internal/game/rule"
	"github.com/palemoky/draw-guess/internal/protocol"
	"github.com/palemoky/draw-guess/internal/protocol/codec"
)

// turnResult 猜词阶段的结果
type turnResult struct {
	reason protocol.TurnEndReason
	scores *scoreBoard
}

// playTurn 当前玩家的一个回合：选词、猜词、结算
func (s *Session) playTurn(ctx context.Context) error {
	words := s.words.Sample(s.wordChoices)
	if len(words) == 0 {
		return errNoWords
	}

	s.state = StateChoosingWord
	chosen, err := s.chooseWord(ctx, words)
	if err != nil {
		return err
	}

	s.word = chosen
	s.hint = rule.Mask(chosen)
	s.timerFor(time.Duration(s.settings.Timer) * time.Second)
	s.state = StateInTurn

	start := protocol.TurnStartPayload{
		CurrentPlayerID: s.current,
		WordHint:        s.hint,
		Timer:           s.timer,
	}
	s.sendOthers(s.current, codec.MustNewMessage(protocol.MsgTurnStart, start))
	start.WordHint = s.word
	s.sendToID(s.current, codec.MustNewMessage(protocol.MsgTurnStart, start))
	s.image = nil

	res, err := s.guessingPhase(ctx)
	if err != nil {
		return err
	}

	s.hint = s.word
	s.state = StateEndTurn
	for _, p := range s.players {
		p.HasGuessed = false
		if pts, ok := res.scores.get(p.ID); ok {
			p.Score += pts
		}
	}

	s.timerFor(endTurnHold)
	s.broadcast(codec.MustNewMessage(protocol.MsgTurnEnd, protocol.TurnEndPayload{
		Reason: res.reason,
		Word:   s.word,
		Scores: res.scores.entries(),
		Timer:  s.timer,
	}))
	s.log.Debug("回合结束", zap.String("reason", string(res.reason)), zap.Int("drawer", s.current))

	return s.sleep(ctx, endTurnHold)
}

// chooseWord 等待画手选词；超时或画手离开时随机选择
func (s *Session) chooseWord(ctx context.Context, words []string) (string, error) {
	var (
		chosen string
		done   = make(chan struct{})
	)
	resolve := func(w string) {
		select {
		case <-done:
			return
		default:
		}
		chosen = w
		close(done)
	}

	scope := s.bus.NewScope()
	defer scope.Close()

	d := time.Duration(s.settings.ChooseWordTimer) * time.Second
	deadline := s.afterFunc(d, func() { resolve(s.pick(words)) })
	defer deadline.Stop()

	event.On(scope, topicWordChosen, func(c wordChoice) {
		if c.player.ID != s.current || c.index < 0 || c.index >= len(words) {
			return
		}
		resolve(words[c.index])
	})
	event.On(scope, topicCurrentPlayerLeft, func(*Player) {
		resolve(s.pick(words))
	})

	s.timerFor(d)
	msg := protocol.ChooseWordPayload{
		CurrentPlayerID: s.current,
		Words:           words,
		Timer:           s.timer,
	}
	s.sendToID(s.current, codec.MustNewMessage(protocol.MsgChooseWord, msg))
	msg.Words = nil
	s.sendOthers(s.current, codec.MustNewMessage(protocol.MsgChooseWord, msg))

	if err := s.pump(ctx, done); err != nil {
		return "", err
	}
	return chosen, nil
}

// guessingPhase 猜词阶段，恰好产生一个结果
func (s *Session) guessingPhase(ctx context.Context) (turnResult, error) {
	var (
		word     = s.word
		scoring  = rule.NewScoring(s.settings.Timer)
		maxHints = rule.MaxHints(s.settings.MaxHints, word)
		interval = rule.HintInterval(s.settings.Timer, maxHints)
		scores   = newScoreBoard()
		result   turnResult
		done     = make(chan struct{})

		deadline   *timerHandle
		hintTimer  *timerHandle
		revealed   int
		firstGuess bool
	)

	resolve := func(reason protocol.TurnEndReason) {
		select {
		case <-done:
			return
		default:
		}
		deadline.Stop()
		hintTimer.Stop()
		result = turnResult{reason: reason, scores: scores}
		close(done)
	}

	if s.player(s.current) == nil {
		resolve(protocol.TurnEndLeft)
		return result, nil
	}

	scoreDrawer := func() {
		scores.set(s.current, scoring.DrawerPoints(s.timeLeft(), s.guessedCount()))
	}
	onDeadline := func() {
		scoreDrawer()
		resolve(protocol.TurnEndTimeOut)
	}
	checkAllGuessed := func() {
		if s.stillGuessing() == 0 {
			scoreDrawer()
			resolve(protocol.TurnEndGuessed)
		}
	}

	scope := s.bus.NewScope()
	defer scope.Close()
	defer func() {
		deadline.Stop()
		hintTimer.Stop()
	}()

	deadline = s.afterFunc(s.timeLeft(), onDeadline)

	var scheduleHint func()
	scheduleHint = func() {
		hintTimer = s.afterFunc(interval, func() {
			next, ok := rule.RevealHint(word, s.hint, s.rng)
			if !ok {
				return
			}
			s.hint = next
			revealed++
			s.sendOthers(s.current, codec.MustNewMessage(protocol.MsgRevealHint, protocol.RevealHintPayload{
				WordHint: s.hint,
			}))
			if revealed < maxHints {
				scheduleHint()
			}
		})
	}
	if maxHints > 0 {
		scheduleHint()
	}

	event.On(scope, topicPlayerGuessed, func(p *Player) {
		scores.set(p.ID, scoring.GuesserPoints(s.timeLeft(), s.stillGuessing()))

		if !firstGuess {
			firstGuess = true
			jump := scoring.JumpTime()
			if expires := s.clock.Now().Add(jump).UnixMilli(); expires < s.timer.Expires {
				s.timer.Expires = expires
				deadline.Stop()
				deadline = s.afterFunc(jump, onDeadline)
				s.broadcast(codec.MustNewMessage(protocol.MsgTimer, protocol.TimerPayload{Timer: s.timer}))
			}
		}
		checkAllGuessed()
	})
	event.On(scope, topicPlayerJoin, func(*Player) {
		checkAllGuessed()
	})
	event.On(scope, topicPlayerLeft, func(p *Player) {
		if p.ID == s.current {
			return
		}
		scores.remove(p.ID)
		checkAllGuessed()
	})
	event.On(scope, topicCurrentPlayerLeft, func(*Player) {
		// 画手离开：本回合不计分
		scores = newScoreBoard()
		resolve(protocol.TurnEndLeft)
	})

	if err := s.pump(ctx, done); err != nil {
		return turnResult{}, err
	}
	return result, nil
}

// pick 随机选择一个候选词
func (s *Session) pick(words []string) string {
	if s.rng != nil {
		return words[s.rng.IntN(len(words))]
	}
	return words[rand.IntN(len(words))]
}
