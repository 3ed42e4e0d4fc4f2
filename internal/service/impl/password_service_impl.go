package impl

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"account-auth/internal/domain"

	"golang.org/x/crypto/argon2"
	"golang.org/x/sync/semaphore"
)

const algoName = "argon2id"

type Argon2Params struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB (e.g., 64*1024 = 64MB)
	Threads uint8  // parallelism
	KeyLen  uint32 // bytes
	SaltLen uint32 // bytes
}

// DefaultArgon2Params is the policy for new hashes.
var DefaultArgon2Params = Argon2Params{
	Time:    3,
	Memory:  64 * 1024, // 64 MiB
	Threads: 2,
	KeyLen:  32,
	SaltLen: 16,
}

// PasswordServiceImpl hashes into the PHC string format, so every stored hash
// carries its own salt and cost parameters. Concurrent hash computations are
// capped by a semaphore; each one holds Memory KiB while it runs.
type PasswordServiceImpl struct {
	cur  Argon2Params
	sema *semaphore.Weighted
}

// NewPasswordServiceArgon2id builds the service. maxConcurrent <= 0 defaults
// to GOMAXPROCS.
func NewPasswordServiceArgon2id(params Argon2Params, maxConcurrent int) *PasswordServiceImpl {
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	return &PasswordServiceImpl{
		cur:  params,
		sema: semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

func (p *PasswordServiceImpl) Hash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, p.cur.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	if err := p.sema.Acquire(ctx, 1); err != nil {
		return "", err
	}
	sum := argon2.IDKey([]byte(password), salt, p.cur.Time, p.cur.Memory, p.cur.Threads, p.cur.KeyLen)
	p.sema.Release(1)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algoName,
		argon2.Version,
		p.cur.Memory,
		p.cur.Time,
		p.cur.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

func (p *PasswordServiceImpl) Verify(ctx context.Context, hash, password string) (bool, error) {
	stored, salt, expected, err := decodeHash(hash)
	if err != nil {
		return false, domain.ErrMalformedHash.Wrap(err)
	}

	if err := p.sema.Acquire(ctx, 1); err != nil {
		return false, err
	}
	calculated := argon2.IDKey([]byte(password), salt, stored.Time, stored.Memory, stored.Threads, uint32(len(expected)))
	p.sema.Release(1)

	return subtle.ConstantTimeCompare(calculated, expected) == 1, nil
}

// decodeHash parses $argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>.
func decodeHash(encoded string) (Argon2Params, []byte, []byte, error) {
	var params Argon2Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algoName {
		return params, nil, nil, fmt.Errorf("not an %s hash", algoName)
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || !strings.HasPrefix(parts[2], "v=") || version != argon2.Version {
		return params, nil, nil, fmt.Errorf("unsupported version %q", parts[2])
	}

	for _, kv := range strings.Split(parts[3], ",") {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			return params, nil, nil, fmt.Errorf("bad parameter %q", kv)
		}
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil || n == 0 {
			return params, nil, nil, fmt.Errorf("bad parameter %q", kv)
		}
		switch key {
		case "m":
			params.Memory = uint32(n)
		case "t":
			params.Time = uint32(n)
		case "p":
			if n > 255 {
				return params, nil, nil, fmt.Errorf("bad parameter %q", kv)
			}
			params.Threads = uint8(n)
		default:
			return params, nil, nil, fmt.Errorf("unknown parameter %q", key)
		}
	}
	if params.Memory == 0 || params.Time == 0 || params.Threads == 0 {
		return params, nil, nil, fmt.Errorf("missing parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return params, nil, nil, fmt.Errorf("bad salt")
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(sum) == 0 {
		return params, nil, nil, fmt.Errorf("bad hash")
	}
	return params, salt, sum, nil
}
