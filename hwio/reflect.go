package hwio

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// tagInfo is the parsed form of a `hwio:"..."` struct tag, e.g.
// `hwio:"offset=0x15,bank=1,size=0x800,vsize=0x2000,readonly,rcb,wcb"`.
type tagInfo struct {
	hasOffset bool
	offset    uint16
	bank      int
	size      int
	vsize     int
	readonly  bool
	writeonly bool
	rcb, wcb, pcb bool
}

func parseTag(tag string) (tagInfo, error) {
	var info tagInfo
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, hasVal := strings.Cut(part, "=")
		switch key {
		case "offset":
			n, err := strconv.ParseUint(val, 0, 16)
			if err != nil {
				return info, fmt.Errorf("hwio: bad offset %q: %w", val, err)
			}
			info.offset = uint16(n)
			info.hasOffset = true
		case "bank":
			n, err := strconv.Atoi(val)
			if err != nil {
				return info, fmt.Errorf("hwio: bad bank %q: %w", val, err)
			}
			info.bank = n
		case "size":
			n, err := strconv.ParseUint(val, 0, 32)
			if err != nil {
				return info, fmt.Errorf("hwio: bad size %q: %w", val, err)
			}
			info.size = int(n)
		case "vsize":
			n, err := strconv.ParseUint(val, 0, 32)
			if err != nil {
				return info, fmt.Errorf("hwio: bad vsize %q: %w", val, err)
			}
			info.vsize = int(n)
		case "readonly":
			info.readonly = true
		case "writeonly":
			info.writeonly = true
		case "rcb":
			info.rcb = true
		case "wcb":
			info.wcb = true
		case "pcb":
			info.pcb = true
		default:
			if !hasVal {
				// unknown bare flag: ignore, forward compatible.
				continue
			}
		}
	}
	return info, nil
}

type regEntry struct {
	offset uint16
	regPtr any
}

// bankGetRegs walks bank's exported hwio-tagged fields and returns those
// belonging to bankNum, in struct declaration order.
func bankGetRegs(bank any, bankNum int) ([]regEntry, error) {
	v := reflect.ValueOf(bank)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("hwio: bank must be a pointer to struct, got %T", bank)
	}
	elem := v.Elem()
	t := elem.Type()

	var regs []regEntry
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		info, err := parseTag(tag)
		if err != nil {
			return nil, err
		}
		if !info.hasOffset || info.bank != bankNum {
			continue
		}
		regs = append(regs, regEntry{offset: info.offset, regPtr: elem.Field(i).Addr().Interface()})
	}
	return regs, nil
}

// MustInitRegs wires up RoMask/Flags/Read-Write-Peek callbacks for every
// hwio-tagged field of bank, across all banks it declares. Callback methods
// are located by name: a field named Foo is wired to ReadFOO/WriteFOO/PeekFOO
// on bank, matched only when the corresponding "rcb"/"wcb"/"pcb" tag option
// is present. Panics on any malformed tag or missing callback method, since
// this only ever runs once at startup from trusted, hand-written code.
func MustInitRegs(bank any) {
	v := reflect.ValueOf(bank)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		panic(fmt.Errorf("hwio: MustInitRegs needs a pointer to struct, got %T", bank))
	}
	elem := v.Elem()
	t := elem.Type()

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup("hwio")
		if !ok {
			continue
		}
		info, err := parseTag(tag)
		if err != nil {
			panic(err)
		}
		if !info.hasOffset {
			continue
		}

		field := elem.Field(i)
		upper := strings.ToUpper(sf.Name)

		switch fv := field.Addr().Interface().(type) {
		case *Reg8:
			fv.Name = sf.Name
			if info.readonly {
				fv.Flags |= ReadOnlyFlag
			}
			if info.writeonly {
				fv.Flags |= WriteOnlyFlag
			}
			if info.rcb {
				fv.ReadCb = mustMethod[func(uint8) uint8](v, "Read"+upper)
			}
			if info.wcb {
				fv.WriteCb = mustMethod[func(uint8, uint8)](v, "Write"+upper)
			}
			if info.pcb {
				fv.PeekCb = mustMethod[func(uint8) uint8](v, "Peek"+upper)
			}
		case *Mem:
			fv.Name = sf.Name
			if info.size > 0 && fv.Data == nil {
				fv.Data = make([]byte, info.size)
			}
			switch {
			case info.vsize > 0:
				fv.VSize = info.vsize
			case fv.VSize == 0:
				fv.VSize = len(fv.Data)
			}
			if info.readonly {
				fv.Flags |= MemFlag8ReadOnly
			}
			if info.wcb {
				fv.WriteCb = mustMethod[func(uint16, uint8)](v, "Write"+upper)
			}
		case *Manual:
			fv.Name = sf.Name
			if info.size > 0 {
				fv.Size = info.size
			}
			if info.rcb {
				fv.ReadCb = mustMethod[func(uint16, bool) uint8](v, "Read"+upper)
			}
			if info.wcb {
				fv.WriteCb = mustMethod[func(uint16, uint8)](v, "Write"+upper)
			}
		default:
			panic(fmt.Errorf("hwio: field %s.%s has unsupported hwio type %T", t.Name(), sf.Name, fv))
		}
	}
}

func mustMethod[F any](v reflect.Value, name string) F {
	m := v.MethodByName(name)
	if !m.IsValid() {
		panic(fmt.Errorf("hwio: %s has no method %s", v.Type(), name))
	}
	fn, ok := m.Interface().(F)
	if !ok {
		panic(fmt.Errorf("hwio: %s.%s has the wrong signature (got %s)", v.Type(), name, m.Type()))
	}
	return fn
}
