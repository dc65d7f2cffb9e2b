package rule

import (
	"math"
	"time"
)

// 计分常量
const (
	guesserBase     = 300 // 猜中基础分（乘以时间奖励）
	guesserPerLeft  = 25  // 每个尚未猜中的玩家加分
	drawerPerGuess  = 60  // 画手每有一人猜中加分
	drawerTimeBonus = 50  // 画手时间奖励
	scoreStep       = 5
	jumpStep        = 15 // 首次猜中后倒计时缩短的取整粒度（秒）
	minHintInterval = 10 * time.Second
	minScoringFloor = 30 // 计分窗口下限（秒）
)

// RoundTo 四舍五入到 step 的整数倍（.5 向上）
func RoundTo(n, step float64) float64 {
	return math.Floor(n/step+0.5) * step
}

// Scoring 单回合计分参数
type Scoring struct {
	timer  float64 // 回合时长（秒）
	window float64 // 计分窗口（秒），回合短于 30s 时为负
}

// NewScoring 根据回合时长创建计分器
func NewScoring(timerSeconds int) Scoring {
	t := float64(timerSeconds)
	return Scoring{
		timer:  t,
		window: t - math.Max(t/2, minScoringFloor),
	}
}

// Window 计分窗口
func (s Scoring) Window() time.Duration {
	return time.Duration(s.window * float64(time.Second))
}

// TimeBonus 剩余时间奖励系数，范围 [0, 1]
func (s Scoring) TimeBonus(timeLeft time.Duration) float64 {
	left := timeLeft.Seconds()
	if s.window == 0 {
		// left/0 为 +Inf 或 NaN
		if left > 0 {
			return 1
		}
		return 0
	}
	return math.Min(math.Max(left/s.window, 0), 1)
}

// GuesserPoints 猜中者得分，stillGuessing 为计入本人后仍未猜中的人数
func (s Scoring) GuesserPoints(timeLeft time.Duration, stillGuessing int) int {
	raw := guesserBase*s.TimeBonus(timeLeft) + float64(stillGuessing*guesserPerLeft)
	return int(RoundTo(raw, scoreStep))
}

// DrawerPoints 画手得分
func (s Scoring) DrawerPoints(timeLeft time.Duration, guessed int) int {
	raw := float64(drawerPerGuess*guessed) + s.TimeBonus(timeLeft)*drawerTimeBonus
	return int(RoundTo(raw, scoreStep))
}

// JumpTime 首次有人猜中后，倒计时缩短到的剩余时长
func (s Scoring) JumpTime() time.Duration {
	return time.Duration(RoundTo(s.timer*0.4, jumpStep)) * time.Second
}

// MaxHints 本回合最多揭示的字母数
func MaxHints(configured int, word string) int {
	half := int(RoundTo(float64(RuneLen(word))/2, 1))
	return min(configured, half)
}

// HintInterval 揭示间隔；maxHints 为 0 时返回 0，表示不揭示
func HintInterval(timerSeconds, maxHints int) time.Duration {
	if maxHints <= 0 {
		return 0
	}
	d := time.Duration(float64(timerSeconds) / float64(maxHints) * float64(time.Second))
	return max(d, minHintInterval)
}
