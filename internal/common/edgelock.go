package common

import (
	"sort"
	"strings"
	"sync"
)

// EdgeLocks 按逻辑边串行化并发操作
// 每条边由排序后的实体ID对标识，同一条边上的并发切换被严格排队，
// 这样每次切换读到的都是上一次切换写完后的状态
type EdgeLocks struct {
	mu    sync.Mutex
	locks map[string]*edgeLock
}

type edgeLock struct {
	mu   sync.Mutex
	refs int
}

// NewEdgeLocks 创建边锁注册表
func NewEdgeLocks() *EdgeLocks {
	return &EdgeLocks{locks: make(map[string]*edgeLock)}
}

// Key 由边类别和两个实体ID构造锁键
// ID对先排序，保证 (a,b) 与 (b,a) 落在同一把锁上
func Key(kind, a, b string) string {
	if a > b {
		a, b = b, a
	}
	return strings.Join([]string{kind, a, b}, "\x00")
}

// KeyN 由边类别和任意数量的实体ID构造锁键
func KeyN(kind string, ids ...string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return strings.Join(append([]string{kind}, sorted...), "\x00")
}

// Lock 获取指定边的互斥锁，返回对应的解锁函数
// 锁表按引用计数回收，不会随边的数量无限增长
func (e *EdgeLocks) Lock(key string) (unlock func()) {
	e.mu.Lock()
	l, ok := e.locks[key]
	if !ok {
		l = &edgeLock{}
		e.locks[key] = l
	}
	l.refs++
	e.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		e.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.locks, key)
		}
		e.mu.Unlock()
	}
}
