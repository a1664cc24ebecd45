package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ObjectsPathPrefix 签名读取路由前缀
const ObjectsPathPrefix = "/objects/"

var (
	ErrSignatureInvalid = errors.New("invalid signature")
	ErrSignatureExpired = errors.New("signature expired")
)

// URLSigner 为本地 / WebDAV 存储生成和校验 HMAC-SHA256 签名 URL
type URLSigner struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

// NewURLSigner 创建签名器
func NewURLSigner(secret, baseURL string) *URLSigner {
	return &URLSigner{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// Sign 生成 <base>/objects/<key>?expires=<unix>&signature=<hex>
func (s *URLSigner) Sign(key string, ttl time.Duration) string {
	expires := strconv.FormatInt(s.now().Add(ttl).Unix(), 10)

	q := url.Values{}
	q.Set("expires", expires)
	q.Set("signature", s.signature(key, expires))

	return s.baseURL + ObjectsPathPrefix + escapeKey(key) + "?" + q.Encode()
}

// Verify 校验签名与过期时间
func (s *URLSigner) Verify(key, expires, signature string) error {
	if key == "" || expires == "" || signature == "" {
		return ErrSignatureInvalid
	}

	got, err := hex.DecodeString(signature)
	if err != nil {
		return ErrSignatureInvalid
	}
	want, _ := hex.DecodeString(s.signature(key, expires))
	if !hmac.Equal(got, want) {
		return ErrSignatureInvalid
	}

	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrSignatureInvalid
	}
	if s.now().Unix() > exp {
		return ErrSignatureExpired
	}
	return nil
}

func (s *URLSigner) signature(key, expires string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(key))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(expires))
	return hex.EncodeToString(mac.Sum(nil))
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
