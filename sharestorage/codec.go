package sharestorage

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/roguzh/solana-share-storage/pubkey"
)

// Account data uses a fixed little-endian layout with an 8-byte type
// discriminator, so any party can decode and verify a record from the raw
// account bytes alone.

const (
	discriminatorSize = 8
	holderEntrySize   = pubkey.Size + 2 // pubkey + share basis points
)

// accountDiscriminator derives the 8-byte tag for an account type name.
func accountDiscriminator(name string) [discriminatorSize]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var disc [discriminatorSize]byte
	copy(disc[:], sum[:discriminatorSize])
	return disc
}

var (
	shareStorageDisc    = accountDiscriminator("ShareStorage")
	splShareStorageDisc = accountDiscriminator("SplShareStorage")
	tokenRecordDisc     = accountDiscriminator("TokenDistributionRecord")
)

// IsShareStorageData reports whether the account bytes carry the native
// record discriminator.
func IsShareStorageData(data []byte) bool {
	return len(data) >= discriminatorSize && bytes.Equal(data[:discriminatorSize], shareStorageDisc[:])
}

// IsSplShareStorageData reports whether the account bytes carry the SPL
// record discriminator.
func IsSplShareStorageData(data []byte) bool {
	return len(data) >= discriminatorSize && bytes.Equal(data[:discriminatorSize], splShareStorageDisc[:])
}

// EncodeShareStorage serializes a native record to its account layout.
func EncodeShareStorage(s *ShareStorage) ([]byte, error) {
	if err := ValidateName(s.Name); err != nil {
		return nil, err
	}
	if len(s.Holders) > MaxHolders {
		return nil, fmt.Errorf("%w: %d entries", ErrTooManyHolders, len(s.Holders))
	}

	buf := make([]byte, 0, discriminatorSize+pubkey.Size+4+len(s.Name)+1+8+8+4+len(s.Holders)*holderEntrySize)
	buf = append(buf, shareStorageDisc[:]...)
	buf = append(buf, s.Admin[:]...)
	buf = appendString(buf, s.Name)
	buf = appendBool(buf, s.Enabled)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(s.LastDistributedAt))
	buf = binary.LittleEndian.AppendUint64(buf, s.TotalDistributed)
	buf = appendHolders(buf, s.Holders)
	return buf, nil
}

// DecodeShareStorage parses account bytes into a native record.
func DecodeShareStorage(data []byte) (*ShareStorage, error) {
	r := &reader{data: data}
	if err := r.discriminator(shareStorageDisc); err != nil {
		return nil, err
	}

	var s ShareStorage
	var err error
	if s.Admin, err = r.pubkey(); err != nil {
		return nil, err
	}
	if s.Name, err = r.str(); err != nil {
		return nil, err
	}
	if s.Enabled, err = r.boolean(); err != nil {
		return nil, err
	}
	last, err := r.u64()
	if err != nil {
		return nil, err
	}
	s.LastDistributedAt = int64(last)
	if s.TotalDistributed, err = r.u64(); err != nil {
		return nil, err
	}
	if s.Holders, err = r.holders(); err != nil {
		return nil, err
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return &s, nil
}

// EncodeSplShareStorage serializes an SPL record to its account layout.
func EncodeSplShareStorage(s *SplShareStorage) ([]byte, error) {
	if err := ValidateName(s.Name); err != nil {
		return nil, err
	}
	if len(s.Holders) > MaxHolders {
		return nil, fmt.Errorf("%w: %d entries", ErrTooManyHolders, len(s.Holders))
	}

	buf := make([]byte, 0, discriminatorSize+2*pubkey.Size+4+len(s.Name)+1+8+8+4+len(s.Holders)*holderEntrySize)
	buf = append(buf, splShareStorageDisc[:]...)
	buf = append(buf, s.Admin[:]...)
	buf = append(buf, s.TokenMint[:]...)
	buf = appendString(buf, s.Name)
	buf = appendBool(buf, s.Enabled)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(s.LastDistributedAt))
	buf = binary.LittleEndian.AppendUint64(buf, s.TotalDistributed)
	buf = appendHolders(buf, s.Holders)
	return buf, nil
}

// DecodeSplShareStorage parses account bytes into an SPL record.
func DecodeSplShareStorage(data []byte) (*SplShareStorage, error) {
	r := &reader{data: data}
	if err := r.discriminator(splShareStorageDisc); err != nil {
		return nil, err
	}

	var s SplShareStorage
	var err error
	if s.Admin, err = r.pubkey(); err != nil {
		return nil, err
	}
	if s.TokenMint, err = r.pubkey(); err != nil {
		return nil, err
	}
	if s.Name, err = r.str(); err != nil {
		return nil, err
	}
	if s.Enabled, err = r.boolean(); err != nil {
		return nil, err
	}
	last, err := r.u64()
	if err != nil {
		return nil, err
	}
	s.LastDistributedAt = int64(last)
	if s.TotalDistributed, err = r.u64(); err != nil {
		return nil, err
	}
	if s.Holders, err = r.holders(); err != nil {
		return nil, err
	}
	if err := r.done(); err != nil {
		return nil, err
	}
	return &s, nil
}

// EncodeTokenRecord serializes a per-(storage, mint) bookkeeping record.
func EncodeTokenRecord(rec *TokenDistributionRecord) []byte {
	buf := make([]byte, 0, discriminatorSize+2*pubkey.Size+8+8)
	buf = append(buf, tokenRecordDisc[:]...)
	buf = append(buf, rec.Storage[:]...)
	buf = append(buf, rec.Mint[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, rec.TotalDistributed)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(rec.LastDistributedAt))
	return buf
}

// DecodeTokenRecord parses account bytes into a bookkeeping record.
func DecodeTokenRecord(data []byte) (*TokenDistributionRecord, error) {
	r := &reader{data: data}
	if err := r.discriminator(tokenRecordDisc); err != nil {
		return nil, err
	}

	var rec TokenDistributionRecord
	var err error
	if rec.Storage, err = r.pubkey(); err != nil {
		return nil, err
	}
	if rec.Mint, err = r.pubkey(); err != nil {
		return nil, err
	}
	if rec.TotalDistributed, err = r.u64(); err != nil {
		return nil, err
	}
	last, err := r.u64()
	if err != nil {
		return nil, err
	}
	rec.LastDistributedAt = int64(last)
	if err := r.done(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ---------------------------------------------------------------------------
// layout helpers
// ---------------------------------------------------------------------------

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func appendHolders(buf []byte, holders []ShareHolder) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(holders)))
	for _, h := range holders {
		buf = append(buf, h.Pubkey[:]...)
		buf = binary.LittleEndian.AppendUint16(buf, h.ShareBasisPoints)
	}
	return buf
}

// reader walks account bytes with bounds checking; every failure maps to
// ErrInvalidAccountData.
type reader struct {
	data []byte
	off  int
}

func (r *reader) take(n int) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, fmt.Errorf("%w: truncated at offset %d", ErrInvalidAccountData, r.off)
	}
	out := r.data[r.off : r.off+n]
	r.off += n
	return out, nil
}

func (r *reader) discriminator(want [discriminatorSize]byte) error {
	got, err := r.take(discriminatorSize)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want[:]) {
		return fmt.Errorf("%w: wrong discriminator", ErrInvalidAccountData)
	}
	return nil
}

func (r *reader) pubkey() (pubkey.PubKey, error) {
	raw, err := r.take(pubkey.Size)
	if err != nil {
		return pubkey.Zero, err
	}
	return pubkey.FromBytes(raw)
}

func (r *reader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	if n > MaxNameLen {
		return "", fmt.Errorf("%w: name length %d", ErrInvalidAccountData, n)
	}
	raw, err := r.take(int(n))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (r *reader) boolean() (bool, error) {
	raw, err := r.take(1)
	if err != nil {
		return false, err
	}
	switch raw[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: bad bool byte %#x", ErrInvalidAccountData, raw[0])
	}
}

func (r *reader) u32() (uint32, error) {
	raw, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

func (r *reader) u64() (uint64, error) {
	raw, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(raw), nil
}

func (r *reader) holders() ([]ShareHolder, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}
	if n > MaxHolders {
		return nil, fmt.Errorf("%w: holder count %d", ErrInvalidAccountData, n)
	}
	holders := make([]ShareHolder, 0, n)
	for i := uint32(0); i < n; i++ {
		pk, err := r.pubkey()
		if err != nil {
			return nil, err
		}
		raw, err := r.take(2)
		if err != nil {
			return nil, err
		}
		holders = append(holders, ShareHolder{
			Pubkey:           pk,
			ShareBasisPoints: binary.LittleEndian.Uint16(raw),
		})
	}
	return holders, nil
}

func (r *reader) done() error {
	if r.off != len(r.data) {
		return fmt.Errorf("%w: %d trailing bytes", ErrInvalidAccountData, len(r.data)-r.off)
	}
	return nil
}
