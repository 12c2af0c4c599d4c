package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jzelinskie/whirlpool"
	"github.com/martinlindhe/gogost/gost34112012256"
	"github.com/martinlindhe/gogost/gost34112012512"
	"github.com/ppphp/entropago/pkg/exception"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

const hashingBlocksize = 32768

var hashFuncMap = map[string]func() hash.Hash{
	"MD5":         md5.New,
	"SHA1":        sha1.New,
	"SHA256":      sha256.New,
	"SHA512":      sha512.New,
	"RMD160":      ripemd160.New,
	"WHIRLPOOL":   func() hash.Hash { return whirlpool.New() },
	"SHA3_256":    sha3.New256,
	"SHA3_512":    sha3.New512,
	"STREEBOG256": func() hash.Hash { return gost34112012256.New() },
	"STREEBOG512": func() hash.Hash { return gost34112012512.New() },
	"BLAKE2B": func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	},
	"BLAKE2S": func() hash.Hash {
		h, _ := blake2s.New256(nil)
		return h
	},
}

// GetValidChecksumKeys returns the supported hash names, sorted.
func GetValidChecksumKeys() []string {
	keys := make([]string, 0, len(hashFuncMap))
	for k := range hashFuncMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newHash(hashname string) (hash.Hash, error) {
	f, ok := hashFuncMap[hashname]
	if !ok {
		return nil, exception.Raise(exception.KindDigest, hashname+" hash function not available")
	}
	return f(), nil
}

func ChecksumStr(data, hashname string) ([]byte, error) {
	h, err := newHash(hashname)
	if err != nil {
		return nil, err
	}
	h.Write([]byte(data))
	return h.Sum(nil), nil
}

// ChecksumReader hashes r to EOF and returns the digest and byte count.
func ChecksumReader(r io.Reader, hashname string) ([]byte, int64, error) {
	h, err := newHash(hashname)
	if err != nil {
		return nil, 0, err
	}
	size, err := io.CopyBuffer(h, r, make([]byte, hashingBlocksize))
	if err != nil {
		return nil, 0, err
	}
	return h.Sum(nil), size, nil
}

// PerformChecksum hashes the file fname.
func PerformChecksum(fname, hashname string) ([]byte, int64, error) {
	f, err := os.Open(fname)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, exception.Raise(exception.KindFileNotFound, fname)
		}
		return nil, 0, err
	}
	defer f.Close()
	return ChecksumReader(f, hashname)
}

// PerformMultipleChecksums returns hex digests of fname keyed by hash name.
func PerformMultipleChecksums(fname string, hashes []string) (map[string]string, error) {
	rVal := map[string]string{}
	for _, x := range hashes {
		sum, _, err := PerformChecksum(fname, x)
		if err != nil {
			return nil, err
		}
		rVal[x] = hex.EncodeToString(sum)
	}
	return rVal, nil
}

// Sha1File is the hex SHA1 of fname, the form embedded in package file names.
func Sha1File(fname string) (string, error) {
	sum, _, err := PerformChecksum(fname, "SHA1")
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

// VerifySha1 reports whether fname hashes to the expected hex SHA1.
func VerifySha1(fname, expected string) (bool, error) {
	got, err := Sha1File(fname)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(got, expected), nil
}

// HashFilter selects hash names from a space separated list such as
// "SHA256 -MD5 *". A trailing "*" or an empty list accepts everything.
type HashFilter func(string) bool

func NewHashFilter(filterStr string) HashFilter {
	tokens := strings.Fields(strings.ToUpper(filterStr))
	if len(tokens) == 0 || tokens[len(tokens)-1] == "*" {
		return func(string) bool { return true }
	}
	return func(hashName string) bool {
		for _, token := range tokens {
			if token == "*" || token == hashName {
				return true
			} else if token[:1] == "-" {
				if token[1:] == "*" || token[1:] == hashName {
					return false
				}
			}
		}
		return false
	}
}

// Apply returns the supported hash names the filter accepts.
func (h HashFilter) Apply() []string {
	var out []string
	for _, k := range GetValidChecksumKeys() {
		if h(k) {
			out = append(out, k)
		}
	}
	return out
}
