package analysis

import "sync"

// Leases 进程内每个相册最多一个分析在执行
type Leases struct {
	mu     sync.Mutex
	albums map[uint]struct{}
}

// NewLeases 创建租约表
func NewLeases() *Leases {
	return &Leases{albums: make(map[uint]struct{})}
}

// TryAcquire 获取相册租约，已被持有时返回 false
func (l *Leases) TryAcquire(albumID uint) (release func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.albums[albumID]; held {
		return nil, false
	}
	l.albums[albumID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.albums, albumID)
			l.mu.Unlock()
		})
	}, true
}

// Held 相册是否正在分析
func (l *Leases) Held(albumID uint) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, held := l.albums[albumID]
	return held
}
