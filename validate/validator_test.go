package validate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinywasm/core/parser"
	"github.com/tinywasm/core/validate"
	"github.com/tinywasm/core/wasm"
)

func runValidate(buf []byte) error {
	p := parser.NewParser()
	v := validate.NewValidator()
	for {
		n, chunk, err := p.Parse(buf)
		if err != nil {
			return err
		}
		if err := v.Validate(&chunk); err != nil {
			return err
		}
		buf = buf[n:]
		if chunk.Kind == parser.ChunkDone {
			return nil
		}
	}
}

func TestMinimalValidModule(t *testing.T) {
	buf := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	require.NoError(t, runValidate(buf))
}

func TestBadVersionRejected(t *testing.T) {
	buf := []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}
	err := runValidate(buf)
	require.Error(t, err)
	var badVersion wasm.BadVersionError
	require.ErrorAs(t, err, &badVersion)
}

func TestBadMagicRejected(t *testing.T) {
	buf := []byte{0x00, 0x61, 0x73, 0x6E, 0x01, 0x00, 0x00, 0x00}
	err := runValidate(buf)
	require.Error(t, err)
	var badMagic wasm.BadMagicNumberError
	require.ErrorAs(t, err, &badMagic)
}

// funcReturnsParam builds a module with one type (i32)->(i32), one
// function of that type, and a body "local.get 0 end".
func funcReturnsParam() []byte {
	buf := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}     // preamble
	buf = append(buf, 0x01, 0x06, 0x01, 0x60, 0x01, 0x7F, 0x01, 0x7F) // type section
	buf = append(buf, 0x03, 0x02, 0x01, 0x00)                         // function section
	buf = append(buf, 0x0A, 0x06, 0x01, 0x04, 0x00, 0x20, 0x00, 0x0B) // code section
	return buf
}

func TestFunctionReturnsParamAccepted(t *testing.T) {
	require.NoError(t, runValidate(funcReturnsParam()))
}

func TestStackUnderflowRejected(t *testing.T) {
	buf := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	buf = append(buf, 0x01, 0x06, 0x01, 0x60, 0x01, 0x7F, 0x01, 0x7F) // type section
	buf = append(buf, 0x03, 0x02, 0x01, 0x00)                         // function section
	buf = append(buf, 0x0A, 0x04, 0x01, 0x02, 0x00, 0x0B)             // code: empty body, just end

	err := runValidate(buf)
	require.Error(t, err)
	var empty wasm.OperandStackEmptyError
	require.ErrorAs(t, err, &empty)
}

func TestSettingImmutableGlobalRejected(t *testing.T) {
	buf := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	buf = append(buf, 0x01, 0x04, 0x01, 0x60, 0x00, 0x00) // type: () -> ()
	buf = append(buf,
		0x02, 0x08, // import section, size 8
		0x01,      // count
		0x01, 'm', // module "m"
		0x01, 'g', // name "g"
		0x03, 0x7F, 0x00, // global import: i32, immutable
	)
	buf = append(buf, 0x03, 0x02, 0x01, 0x00) // function section
	buf = append(buf,
		0x0A, 0x08, // code section, size 8
		0x01,       // count
		0x06,       // entry size
		0x00,       // 0 local runs
		0x41, 0x01, // i32.const 1
		0x24, 0x00, // global.set 0
		0x0B, // end
	)

	err := runValidate(buf)
	require.Error(t, err)
	var immut wasm.SettingImmutableGlobalError
	require.ErrorAs(t, err, &immut)
}

func TestDuplicateExportRejected(t *testing.T) {
	buf := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	buf = append(buf, 0x01, 0x04, 0x01, 0x60, 0x00, 0x00) // type: () -> ()
	buf = append(buf, 0x03, 0x02, 0x01, 0x00)             // function section
	buf = append(buf,
		0x07, 0x09, // export section, size 9
		0x02,                  // count
		0x01, 'x', 0x00, 0x00, // export "x" -> func 0
		0x01, 'x', 0x00, 0x00, // export "x" -> func 0 again
	)
	buf = append(buf, 0x0A, 0x04, 0x01, 0x02, 0x00, 0x0B) // code section

	err := runValidate(buf)
	require.Error(t, err)
	var dup wasm.DuplicateExportNameError
	require.ErrorAs(t, err, &dup)
}

func TestDataOffsetWrongTypeRejected(t *testing.T) {
	buf := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	buf = append(buf, 0x05, 0x03, 0x01, 0x00, 0x01) // memory section: 1 memory, min 1
	buf = append(buf,
		0x0B, 0x09, // data section, size 9
		0x01,                         // count
		0x00,                         // memory index 0
		0x43, 0x00, 0x00, 0x00, 0x00, // f32.const 0 (wrong type; offset must be i32)
		0x0B, // end
		0x00, // data length 0
	)

	err := runValidate(buf)
	require.Error(t, err)
	var mismatch wasm.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestSectionOrderViolationRejected(t *testing.T) {
	buf := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	buf = append(buf, 0x03, 0x01, 0x00) // function section (id 3) with 0 entries
	buf = append(buf, 0x01, 0x01, 0x00) // type section (id 1) with 0 entries, out of order

	err := runValidate(buf)
	require.Error(t, err)
	var order wasm.UnexpectedSectionOrderError
	require.ErrorAs(t, err, &order)
}
