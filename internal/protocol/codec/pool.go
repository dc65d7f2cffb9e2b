package codec

import (
	"bytes"
	"sync"
)

// 超过该容量的缓冲区不回收（如携带完整画布的登录快照）
const maxPooledBufferSize = 64 * 1024

// 编码缓冲池，降低广播绘画指令时的 GC 压力
var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// GetBuffer 从池中取出一个空缓冲区
func GetBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

// PutBuffer 归还缓冲区；nil 或过大的缓冲区直接丢弃
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBufferSize {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
