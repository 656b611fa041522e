package principal

import (
	"encoding/base32"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"strings"

	"github.com/pkg/errors"
)

const (
	// 文本格式中每组字符数, 组之间使用 '-' 连接
	groupSize = 5
	// 原始字节的最大长度 (Internet Computer 规定为 29 字节)
	maxLength = 29
)

var (
	// Anonymous 匿名调用者
	Anonymous = MustParse("2vxsx-fae")
	// Management 管理 canister
	Management = MustParse("aaaaa-aa")

	ErrInvalidPrincipal = errors.New("invalid principal")

	encoding = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// Principal 账户 / canister 的身份标识, 以规范文本格式保存
// 文本格式: base32(crc32(bytes) || bytes), 小写, 每 5 个字符用 '-' 分隔
type Principal string

// Parse 解析并校验文本格式的 principal
// 校验内容:
// 1. 字符集合与分组格式
// 2. 前 4 字节 CRC32 校验和
// 3. 文本必须是规范形式 (重新编码后与输入一致)
func Parse(text string) (Principal, error) {
	if text == "" {
		return "", errors.Wrap(ErrInvalidPrincipal, "empty text")
	}

	raw, err := encoding.DecodeString(strings.ToUpper(strings.ReplaceAll(text, "-", "")))
	if err != nil {
		return "", errors.Wrapf(ErrInvalidPrincipal, "%s: %v", text, err)
	}
	if len(raw) < crc32.Size {
		return "", errors.Wrapf(ErrInvalidPrincipal, "%s: too short", text)
	}

	body := raw[crc32.Size:]
	if len(body) > maxLength {
		return "", errors.Wrapf(ErrInvalidPrincipal, "%s: too long", text)
	}
	if binary.BigEndian.Uint32(raw[:crc32.Size]) != crc32.ChecksumIEEE(body) {
		return "", errors.Wrapf(ErrInvalidPrincipal, "%s: checksum mismatch", text)
	}

	p := FromBytes(body)
	if string(p) != text {
		return "", errors.Wrapf(ErrInvalidPrincipal, "%s: not canonical, expected %s", text, p)
	}
	return p, nil
}

// MustParse 解析失败时 panic, 仅用于常量初始化
func MustParse(text string) Principal {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// FromBytes 将原始字节编码为文本格式
func FromBytes(body []byte) Principal {
	buf := make([]byte, crc32.Size+len(body))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(body))
	copy(buf[crc32.Size:], body)

	encoded := strings.ToLower(encoding.EncodeToString(buf))
	var groups []string
	for len(encoded) > groupSize {
		groups = append(groups, encoded[:groupSize])
		encoded = encoded[groupSize:]
	}
	groups = append(groups, encoded)
	return Principal(strings.Join(groups, "-"))
}

// Bytes 返回 principal 的原始字节
func (p Principal) Bytes() []byte {
	raw, err := encoding.DecodeString(strings.ToUpper(strings.ReplaceAll(string(p), "-", "")))
	if err != nil || len(raw) < crc32.Size {
		return nil
	}
	return raw[crc32.Size:]
}

func (p Principal) Text() string {
	return string(p)
}

func (p Principal) String() string {
	return string(p)
}

func (p Principal) IsAnonymous() bool {
	return p == Anonymous
}

// UnmarshalJSON 反序列化时同时校验格式
func (p *Principal) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return errors.Wrap(ErrInvalidPrincipal, err.Error())
	}
	if text == "" {
		*p = ""
		return nil
	}
	parsed, err := Parse(text)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
