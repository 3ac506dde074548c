package rplcore

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal128 payload layout. No Go library exposes Intel's BID/DPD
// decimal128 bit format, so this is this module's own fixed 16-byte
// encoding, chosen to satisfy the same contract: a constant-size payload
// copied in and out verbatim, with a total ordering of ten IEEE-754-2008
// classes and round-trip-able editing-mode text.
//
//	byte 0:      bit 7 = sign; bits 6-5 = special class (0 finite, 1
//	             infinity, 2 quiet NaN, 3 signaling NaN); bits 4-0 unused
//	bytes 1-2:   big-endian signed (two's complement) decimal exponent
//	bytes 3-15:  big-endian unsigned coefficient magnitude (13 bytes, up
//	             to 2^104-1, i.e. up to 31 decimal digits)
const decimalPayloadSize = 16

const (
	specialFinite = 0
	specialInf    = 1
	specialQNaN   = 2
	specialSNaN   = 3
)

// Class is the IEEE-754-2008 classification of a decimal128 value. The
// numeric order of these constants matches spec.md's required ordering
// exactly: derived predicates below are range tests over this order.
type Class int

const (
	SignalingNaN Class = iota
	QuietNaN
	NegativeInfinity
	NegativeNormal
	NegativeSubnormal
	NegativeZero
	PositiveZero
	PositiveSubnormal
	PositiveNormal
	PositiveInfinity
)

func (c Class) String() string {
	switch c {
	case SignalingNaN:
		return "signalingNaN"
	case QuietNaN:
		return "quietNaN"
	case NegativeInfinity:
		return "negativeInfinity"
	case NegativeNormal:
		return "negativeNormal"
	case NegativeSubnormal:
		return "negativeSubnormal"
	case NegativeZero:
		return "negativeZero"
	case PositiveZero:
		return "positiveZero"
	case PositiveSubnormal:
		return "positiveSubnormal"
	case PositiveNormal:
		return "positiveNormal"
	case PositiveInfinity:
		return "positiveInfinity"
	}
	return "invalid"
}

// minAdjustedExponent mimics decimal128's Emin: below this adjusted
// exponent (exponent + digits - 1), a finite nonzero value classifies as
// subnormal rather than normal.
const minAdjustedExponent = -6143

// bits128 is the decoded, in-memory form of a decimal128 payload.
type bits128 struct {
	sign    bool
	special int // specialFinite, specialInf, specialQNaN, specialSNaN
	exp     int32
	coeff   big.Int // always non-negative magnitude
}

func (b bits128) class() Class {
	switch b.special {
	case specialSNaN:
		return SignalingNaN
	case specialQNaN:
		return QuietNaN
	case specialInf:
		if b.sign {
			return NegativeInfinity
		}
		return PositiveInfinity
	}
	if b.coeff.Sign() == 0 {
		if b.sign {
			return NegativeZero
		}
		return PositiveZero
	}
	digits := len(b.coeff.String())
	adjusted := int(b.exp) + digits - 1
	subnormal := adjusted < minAdjustedExponent
	switch {
	case b.sign && subnormal:
		return NegativeSubnormal
	case b.sign:
		return NegativeNormal
	case subnormal:
		return PositiveSubnormal
	default:
		return PositiveNormal
	}
}

// IsZero, IsNegative and IsNegativeOrZero are pure functions of class, as
// spec.md §4.3 requires.
func IsZero(c Class) bool { return c == NegativeZero || c == PositiveZero }
func IsNegative(c Class) bool {
	return c >= NegativeInfinity && c <= NegativeZero
}
func IsNegativeOrZero(c Class) bool {
	return c >= NegativeInfinity && c <= PositiveZero
}

func (b bits128) encode() [decimalPayloadSize]byte {
	var out [decimalPayloadSize]byte
	flags := byte(b.special) << 5
	if b.sign {
		flags |= 0x80
	}
	out[0] = flags
	out[1] = byte(uint16(b.exp) >> 8)
	out[2] = byte(uint16(b.exp))
	mag := b.coeff.Bytes()
	if len(mag) > 13 {
		mag = mag[len(mag)-13:] // should not happen; encode() callers clamp first
	}
	copy(out[16-len(mag):], mag)
	return out
}

func decodeBits128(p [decimalPayloadSize]byte) bits128 {
	var b bits128
	b.sign = p[0]&0x80 != 0
	b.special = int(p[0]>>5) & 0x3
	b.exp = int32(int16(uint16(p[1])<<8 | uint16(p[2])))
	b.coeff.SetBytes(p[3:])
	return b
}

func clampCoefficient(mag *big.Int) error {
	if mag.BitLen() > 13*8 {
		return ErrArithmetic{Message: "decimal128 coefficient overflow"}
	}
	return nil
}

func fromDecimalValue(d decimal.Decimal) (bits128, error) {
	coeff := d.Coefficient() // signed: carries the value's sign
	var b bits128
	b.exp = d.Exponent()
	if coeff.Sign() < 0 {
		b.sign = true
		b.coeff.Neg(coeff)
	} else {
		b.coeff.Set(coeff)
	}
	if err := clampCoefficient(&b.coeff); err != nil {
		return bits128{}, err
	}
	return b, nil
}

func (b bits128) toDecimalValue() decimal.Decimal {
	mag := new(big.Int).Set(&b.coeff)
	if b.sign {
		mag.Neg(mag)
	}
	return decimal.NewFromBigInt(mag, b.exp)
}

// --- construction ---

func bits128FromString(s string) (bits128, error) {
	trimmed := strings.TrimSpace(s)
	switch trimmed {
	case "∞", "+∞", "Infinity", "+Infinity":
		return bits128{special: specialInf}, nil
	case "-∞", "-Infinity":
		return bits128{special: specialInf, sign: true}, nil
	case "NaN", "nan":
		return bits128{special: specialQNaN}, nil
	case "-NaN", "-nan":
		return bits128{special: specialQNaN, sign: true}, nil
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return bits128{}, err
	}
	b, err := fromDecimalValue(d)
	if err == nil && b.coeff.Sign() == 0 && strings.HasPrefix(trimmed, "-") {
		b.sign = true // keep negative zero, which decimal.Decimal cannot hold
	}
	return b, err
}

func bits128FromInt64(v int64) bits128 {
	b, _ := fromDecimalValue(decimal.New(v, 0))
	return b
}

func bits128FromUint64(v uint64) bits128 {
	b, _ := fromDecimalValue(decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0))
	return b
}

func bits128FromInt32(v int32) bits128 { return bits128FromInt64(int64(v)) }
func bits128FromUint32(v uint32) bits128 { return bits128FromUint64(uint64(v)) }

func bits128FromSignMagnitude(neg bool, mag uint64) bits128 {
	b := bits128FromUint64(mag)
	b.sign = neg
	return b
}

func bits128FromBigInt(v *big.Int) (bits128, error) {
	return fromDecimalValue(decimal.NewFromBigInt(v, 0))
}

// bits128FromDecimal64 lossless-widens a 64-bit decimal floating point value,
// given as its own (sign, coefficient, exponent) triple, since this
// module does not implement the decimal64 kind itself.
func bits128FromDecimal64(sign bool, coefficient uint64, exponent int32) bits128 {
	mag := new(big.Int).SetUint64(coefficient)
	if sign {
		mag.Neg(mag)
	}
	b, _ := fromDecimalValue(decimal.NewFromBigInt(mag, exponent))
	return b
}

// bits128FromDecimal32 is the 32-bit analog of bits128FromDecimal64.
func bits128FromDecimal32(sign bool, coefficient uint32, exponent int32) bits128 {
	return bits128FromDecimal64(sign, uint64(coefficient), exponent)
}

// --- arithmetic ---

func (b bits128) isNaN() bool  { return b.special == specialQNaN || b.special == specialSNaN }
func (b bits128) isInf() bool  { return b.special == specialInf }
func (b bits128) isFinite() bool { return b.special == specialFinite }

func qnan(sign bool) bits128 { return bits128{special: specialQNaN, sign: sign} }
func inf(sign bool) bits128  { return bits128{special: specialInf, sign: sign} }

func decimalAdd(a, b bits128) (bits128, error) {
	if a.isNaN() || b.isNaN() {
		return qnan(a.sign || b.sign), nil
	}
	if a.isInf() || b.isInf() {
		switch {
		case a.isInf() && b.isInf():
			if a.sign != b.sign {
				return qnan(false), nil
			}
			return inf(a.sign), nil
		case a.isInf():
			return inf(a.sign), nil
		default:
			return inf(b.sign), nil
		}
	}
	return fromDecimalValue(a.toDecimalValue().Add(b.toDecimalValue()))
}

func decimalSub(a, b bits128) (bits128, error) {
	return decimalAdd(a, negate(b))
}

func decimalMul(a, b bits128) (bits128, error) {
	if a.isNaN() || b.isNaN() {
		return qnan(a.sign != b.sign), nil
	}
	resultSign := a.sign != b.sign
	if a.isInf() || b.isInf() {
		if (a.isFinite() && a.coeff.Sign() == 0) || (b.isFinite() && b.coeff.Sign() == 0) {
			return qnan(resultSign), nil
		}
		return inf(resultSign), nil
	}
	return fromDecimalValue(a.toDecimalValue().Mul(b.toDecimalValue()))
}

func decimalDiv(a, b bits128) (bits128, error) {
	if a.isNaN() || b.isNaN() {
		return qnan(a.sign != b.sign), nil
	}
	resultSign := a.sign != b.sign
	switch {
	case a.isInf() && b.isInf():
		return qnan(resultSign), nil
	case a.isInf():
		return inf(resultSign), nil
	case b.isInf():
		return bits128FromInt64(0), nil
	case b.coeff.Sign() == 0:
		if a.coeff.Sign() == 0 {
			return qnan(resultSign), nil
		}
		return inf(resultSign), nil
	}
	const divisionPrecision = 40
	q := a.toDecimalValue().DivRound(b.toDecimalValue(), divisionPrecision)
	// Round to at most 31 significant digits (the coefficient's capacity)
	// and drop trailing fractional zeros, so the quotient fits the payload.
	digits := len(new(big.Int).Abs(q.Coefficient()).String())
	if places := 31 - digits - int(q.Exponent()); places < divisionPrecision {
		q = q.Round(int32(places))
	}
	ten := big.NewInt(10)
	for q.Exponent() < 0 {
		c, r := new(big.Int).QuoRem(q.Coefficient(), ten, new(big.Int))
		if r.Sign() != 0 {
			break
		}
		q = decimal.NewFromBigInt(c, q.Exponent()+1)
	}
	return fromDecimalValue(q)
}

// decimalMod is the truncated-toward-zero remainder, sign of the
// dividend. Division by zero here is a domain error rather than an
// infinity, since a remainder cannot express "infinite".
func decimalMod(a, b bits128) (bits128, error) {
	if a.isNaN() || b.isNaN() {
		return qnan(a.sign), nil
	}
	if b.isFinite() && b.coeff.Sign() == 0 {
		return bits128{}, ErrArithmetic{Message: "modulo by zero"}
	}
	if a.isInf() || b.isInf() {
		return bits128{}, ErrArithmetic{Message: "modulo of infinity"}
	}
	av, bv := a.toDecimalValue(), b.toDecimalValue()
	_, r := av.QuoRem(bv, 0)
	return fromDecimalValue(r)
}

// decimalRem is the rounded-quotient remainder: a - round(a/b)*b, as
// opposed to decimalMod's truncated-quotient remainder.
func decimalRem(a, b bits128) (bits128, error) {
	if a.isNaN() || b.isNaN() {
		return qnan(a.sign), nil
	}
	if b.isFinite() && b.coeff.Sign() == 0 {
		return bits128{}, ErrArithmetic{Message: "remainder by zero"}
	}
	if a.isInf() || b.isInf() {
		return bits128{}, ErrArithmetic{Message: "remainder of infinity"}
	}
	av, bv := a.toDecimalValue(), b.toDecimalValue()
	q := av.DivRound(bv, 0)
	return fromDecimalValue(av.Sub(q.Mul(bv)))
}

func negate(a bits128) bits128 {
	a.sign = !a.sign
	return a
}

func absolute(a bits128) bits128 {
	a.sign = false
	return a
}

// compare returns -1/0/1 per the usual Cmp contract, and ok=false if the
// comparison is unordered (either operand is NaN).
func compare(a, b bits128) (result int, ok bool) {
	if a.isNaN() || b.isNaN() {
		return 0, false
	}
	aInf, bInf := a.isInf(), b.isInf()
	switch {
	case aInf && bInf:
		switch {
		case a.sign == b.sign:
			return 0, true
		case a.sign:
			return -1, true
		default:
			return 1, true
		}
	case aInf:
		if a.sign {
			return -1, true
		}
		return 1, true
	case bInf:
		if b.sign {
			return 1, true
		}
		return -1, true
	}
	return a.toDecimalValue().Cmp(b.toDecimalValue()), true
}

// --- rendering ---

// DisplayMode configures non-editing rendering: fixed or scientific
// notation, plus the adjusted-exponent threshold past which scientific
// notation is used even when Scientific is false.
type DisplayMode struct {
	Precision         int32 // fractional digits; 0 means no fixed rounding (trailing fractional zeros are dropped)
	Scientific        bool
	ExponentThreshold int32
}

func (b bits128) renderEditing() string {
	switch b.special {
	case specialSNaN, specialQNaN:
		if b.sign {
			return "-NaN"
		}
		return "NaN"
	case specialInf:
		if b.sign {
			return "-∞"
		}
		return "∞"
	}
	// Write the stored coefficient and exponent exactly (trailing
	// fractional zeros kept, positive exponents in E form) so that
	// re-parsing yields the same bits.
	sign := ""
	if b.sign {
		sign = "-"
	}
	switch {
	case b.exp > 0:
		return fmt.Sprintf("%s%sE%d", sign, b.coeff.String(), b.exp)
	case b.exp < 0:
		return sign + absolute(b).toDecimalValue().StringFixed(-b.exp)
	}
	return sign + b.coeff.String()
}

func (b bits128) renderDisplay(mode DisplayMode) string {
	switch b.special {
	case specialSNaN, specialQNaN:
		if b.sign {
			return "-NaN"
		}
		return "NaN"
	case specialInf:
		if b.sign {
			return "-∞"
		}
		return "∞"
	}
	v := b.toDecimalValue()
	digits := 1
	if b.coeff.Sign() != 0 {
		digits = len(b.coeff.String())
	}
	adjusted := int32(b.exp) + int32(digits) - 1

	useSci := mode.Scientific
	if mode.ExponentThreshold != 0 && (adjusted >= mode.ExponentThreshold || adjusted < -mode.ExponentThreshold) {
		useSci = true
	}

	if useSci {
		return b.renderScientific()
	}
	if mode.Precision > 0 {
		return v.StringFixed(mode.Precision)
	}
	return v.String()
}

// renderScientific formats as d.dddEsxx: a single leading digit, a
// fractional remainder if the coefficient has more than one digit, and a
// signed decimal exponent.
func (b bits128) renderScientific() string {
	digitsStr := b.coeff.String()
	adjusted := int32(b.exp) + int32(len(digitsStr)) - 1
	mantissa := digitsStr[:1]
	if len(digitsStr) > 1 {
		mantissa += "." + digitsStr[1:]
	}
	sign := ""
	if b.sign {
		sign = "-"
	}
	return fmt.Sprintf("%s%sE%+d", sign, mantissa, adjusted)
}

// --- number grammar ---

// scanNumberToken decides whether the token starting at pos is
// number-shaped (an optional sign followed by a digit, or by '.' and a
// digit) and, if so, returns the end of the whole token: everything up to
// the next delimiter, suffix letters and stray characters included. It
// returns ok=false if the token is not number-shaped (so the caller should
// Skip rather than Fail).
func scanNumberToken(s string, pos int) (end int, ok bool) {
	i := pos
	n := len(s)
	if i < n && (s[i] == '+' || s[i] == '-') {
		i++
	}
	numberShaped := i < n && isDigit(s[i])
	if !numberShaped && i < n && s[i] == '.' && i+1 < n && isDigit(s[i+1]) {
		numberShaped = true
	}
	if !numberShaped {
		return pos, false
	}
	// Number-shaped tokens are consumed whole, delimiter to delimiter, the
	// same span a Symbol would claim; full grammar validation (and error
	// positioning within malformed input like "1.2.3") happens afterward
	// in bits128FromString, not here.
	end = pos
	for end < n && !isSymbolDelimiter(s[end]) && !strings.HasPrefix(s[end:], "«") && !strings.HasPrefix(s[end:], "»") {
		end++
	}
	return end, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// secondDotIndex returns the index within token of its second '.', or 0
// (the token start) if there is no second one — the usual shape of a
// malformed numeric token like "1.2.3".
func secondDotIndex(token string) int {
	count := 0
	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			count++
			if count == 2 {
				return i
			}
		}
	}
	return 0
}

func init() {
	register(TagDecimal128, kindOps{
		name: "decimal128",
		size: func(rt *Runtime, payload Ref) (uint, error) {
			return decimalPayloadSize, nil
		},
		parseAt: func(rt *Runtime, text string, pos int) (Ref, int, error) {
			end, ok := scanNumberToken(text, pos)
			if !ok {
				return 0, 0, nil
			}
			token := text[pos:end]
			// A lone sign never reaches here (scanNumberToken requires a
			// digit after it), so "+" and "-" fall through to Symbol. A
			// number-shaped token that does not parse in full is consumed
			// as a hard failure rather than skipped.
			val, err := bits128FromString(token)
			if err != nil {
				errPos := pos + secondDotIndex(token)
				return 0, end - pos, ErrParse{Position: errPos, Message: "malformed number: " + err.Error()}
			}
			ref, err := rt.newDecimal128(val)
			if err != nil {
				return 0, end - pos, err
			}
			return ref, end - pos, nil
		},
		render: func(rt *Runtime, payload Ref, editing bool) (string, error) {
			v, err := rt.decimalAt(payload)
			if err != nil {
				return "", err
			}
			if editing {
				return v.renderEditing(), nil
			}
			return v.renderDisplay(rt.display), nil
		},
		evaluate: func(rt *Runtime, obj Ref) error {
			// Numbers self-evaluate: evaluating one just pushes it back.
			rt.Push(obj)
			return nil
		},
	})
}

// newDecimal128 allocates a decimal128 object holding v.
func (rt *Runtime) newDecimal128(v bits128) (Ref, error) {
	addr, payload, err := rt.allocate(TagDecimal128, decimalPayloadSize)
	if err != nil {
		return 0, err
	}
	enc := v.encode()
	copy(payload, enc[:])
	return addr, nil
}

// decimalAt decodes the decimal128 payload beginning at payload.
func (rt *Runtime) decimalAt(payload Ref) (bits128, error) {
	buf := rt.buf.Bytes()
	if uint(payload)+decimalPayloadSize > uint(len(buf)) {
		return bits128{}, ErrType{Expected: "decimal128", Got: "truncated payload"}
	}
	var raw [decimalPayloadSize]byte
	copy(raw[:], buf[payload:uint(payload)+decimalPayloadSize])
	return decodeBits128(raw), nil
}

// Fpclass returns the IEEE-754-2008 classification of the decimal128 at
// obj (obj is the object's tag address, as returned by PushText/allocate).
func (rt *Runtime) Fpclass(obj Ref) (Class, error) {
	_, tag, payload, err := rt.kindAt(obj)
	if err != nil {
		return 0, err
	}
	if tag != TagDecimal128 {
		return 0, ErrType{Expected: "decimal128", Got: tag.String()}
	}
	v, err := rt.decimalAt(payload)
	if err != nil {
		return 0, err
	}
	return v.class(), nil
}

// NewDecimalFromInt64 allocates a decimal128 from a signed 64-bit integer.
func (rt *Runtime) NewDecimalFromInt64(v int64) (Ref, error) {
	return rt.newDecimal128(bits128FromInt64(v))
}

// NewDecimalFromString allocates a decimal128 by parsing s outright
// (bypassing the token scanner), for embedder convenience.
func (rt *Runtime) NewDecimalFromString(s string) (Ref, error) {
	v, err := bits128FromString(s)
	if err != nil {
		return 0, ErrParse{Message: err.Error()}
	}
	return rt.newDecimal128(v)
}

// NewDecimalFromUint64 allocates a decimal128 from an unsigned 64-bit integer.
func (rt *Runtime) NewDecimalFromUint64(v uint64) (Ref, error) {
	return rt.newDecimal128(bits128FromUint64(v))
}

// NewDecimalFromInt32 allocates a decimal128 from a signed 32-bit integer.
func (rt *Runtime) NewDecimalFromInt32(v int32) (Ref, error) {
	return rt.newDecimal128(bits128FromInt32(v))
}

// NewDecimalFromUint32 allocates a decimal128 from an unsigned 32-bit integer.
func (rt *Runtime) NewDecimalFromUint32(v uint32) (Ref, error) {
	return rt.newDecimal128(bits128FromUint32(v))
}

// NewDecimalFromSignMagnitude allocates a decimal128 from an explicit sign
// bit and unsigned magnitude, distinguishing -0 from +0.
func (rt *Runtime) NewDecimalFromSignMagnitude(neg bool, mag uint64) (Ref, error) {
	return rt.newDecimal128(bits128FromSignMagnitude(neg, mag))
}

// NewDecimalFromBigInt allocates a decimal128 from an arbitrary-precision
// integer, converted directly from the big.Int at any magnitude. A value
// needing more than the 13-byte coefficient fails with ErrArithmetic.
func (rt *Runtime) NewDecimalFromBigInt(v *big.Int) (Ref, error) {
	b, err := bits128FromBigInt(v)
	if err != nil {
		return 0, err
	}
	return rt.newDecimal128(b)
}

// NewDecimalFromDecimal64 lossless-widens a 64-bit decimal floating point
// value, given as its own (sign, coefficient, exponent) triple, since this
// module does not implement the decimal64 kind itself.
func (rt *Runtime) NewDecimalFromDecimal64(sign bool, coefficient uint64, exponent int32) (Ref, error) {
	return rt.newDecimal128(bits128FromDecimal64(sign, coefficient, exponent))
}

// NewDecimalFromDecimal32 is the 32-bit analog of NewDecimalFromDecimal64.
func (rt *Runtime) NewDecimalFromDecimal32(sign bool, coefficient uint32, exponent int32) (Ref, error) {
	return rt.newDecimal128(bits128FromDecimal32(sign, coefficient, exponent))
}

