package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"zenc/internal/backend/ir"
)

// formatC expands a C printf format. Integer arguments are read at the
// width their length modifier names, as the C library would.
func (vm *VM) formatC(format string, args []Value, types []ir.Type) (string, *VMError) {
	var sb strings.Builder
	next := 0
	nextArg := func() (Value, ir.Type) {
		if next >= len(args) {
			return Value{}, ir.I64
		}
		v := args[next]
		var t ir.Type = ir.I64
		if next < len(types) && types[next] != nil {
			t = types[next]
		}
		next++
		return v, t
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		j := i + 1
		start := j
		for j < len(format) && strings.IndexByte("-+ #0", format[j]) >= 0 {
			j++
		}
		flags := format[start:j]

		width := ""
		if j < len(format) && format[j] == '*' {
			v, _ := nextArg()
			width = strconv.FormatInt(v.Int(32), 10)
			j++
		} else {
			s := j
			for j < len(format) && isDigit(format[j]) {
				j++
			}
			width = format[s:j]
		}

		prec, hasPrec := "", false
		if j < len(format) && format[j] == '.' {
			hasPrec = true
			j++
			if j < len(format) && format[j] == '*' {
				v, _ := nextArg()
				prec = strconv.FormatInt(v.Int(32), 10)
				j++
			} else {
				s := j
				for j < len(format) && isDigit(format[j]) {
					j++
				}
				prec = format[s:j]
				if prec == "" {
					prec = "0"
				}
			}
		}

		s := j
		for j < len(format) && strings.IndexByte("hlLqjzt", format[j]) >= 0 {
			j++
		}
		length := format[s:j]

		if j >= len(format) {
			sb.WriteString(format[i:])
			break
		}
		conv := format[j]
		directive := format[i : j+1]
		i = j

		verb := "%" + flags + width
		if hasPrec {
			verb += "." + prec
		}
		switch conv {
		case '%':
			sb.WriteByte('%')
		case 'd', 'i':
			v, t := nextArg()
			fmt.Fprintf(&sb, verb+"d", v.Int(argWidth(length, t)))
		case 'u':
			v, t := nextArg()
			fmt.Fprintf(&sb, verb+"d", v.Bits&mask(argWidth(length, t)))
		case 'x', 'X', 'o':
			v, t := nextArg()
			fmt.Fprintf(&sb, verb+string(conv), v.Bits&mask(argWidth(length, t)))
		case 'c':
			v, _ := nextArg()
			fmt.Fprintf(&sb, "%"+flags+width+"c", rune(byte(v.Bits)))
		case 's':
			v, _ := nextArg()
			str := "(null)"
			if v.Bits != 0 {
				var vmErr *VMError
				if str, vmErr = vm.cString(v.Bits); vmErr != nil {
					return "", vmErr
				}
			}
			if hasPrec {
				if n, err := strconv.Atoi(prec); err == nil && n >= 0 && n < len(str) {
					str = str[:n]
				}
			}
			fmt.Fprintf(&sb, "%"+flags+width+"s", str)
		case 'f', 'F', 'e', 'E', 'g', 'G':
			v, _ := nextArg()
			sb.WriteString(formatFloat(v.F, conv, flags, width, prec, hasPrec))
		case 'p':
			v, _ := nextArg()
			str := "(nil)"
			if v.Bits != 0 {
				str = "0x" + strconv.FormatUint(v.Bits, 16)
			}
			fmt.Fprintf(&sb, "%"+strings.ReplaceAll(flags, "0", "")+width+"s", str)
		default:
			sb.WriteString(directive)
		}
	}
	return sb.String(), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// argWidth is the integer width a length modifier reads.
func argWidth(length string, t ir.Type) int {
	w := 32
	switch length {
	case "hh":
		w = 8
	case "h":
		w = 16
	case "l", "ll", "q", "j", "z", "t":
		w = 64
	}
	if tw := ir.IntBits(t); tw > 0 && tw < w {
		w = tw
	}
	return w
}

func formatFloat(f float64, conv byte, flags, width, prec string, hasPrec bool) string {
	upper := conv == 'F' || conv == 'E' || conv == 'G'
	if math.IsInf(f, 0) || math.IsNaN(f) {
		s := "inf"
		switch {
		case math.IsNaN(f):
			s = "nan"
		case f < 0:
			s = "-inf"
		case strings.Contains(flags, "+"):
			s = "+inf"
		}
		if upper {
			s = strings.ToUpper(s)
		}
		return fmt.Sprintf("%"+strings.ReplaceAll(flags, "0", "")+width+"s", s)
	}
	verb := conv
	if conv == 'F' {
		verb = 'f'
	}
	if !hasPrec {
		prec = "6"
	}
	return fmt.Sprintf("%"+flags+width+"."+prec+string(verb), f)
}
