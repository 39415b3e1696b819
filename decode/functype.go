package decode

import "github.com/tinywasm/core/wasm"

// ReadFunctionType decodes one type-section entry: the 0x60 leading byte,
// a param value-type vector, and a result value-type vector.
func (c *Cursor) ReadFunctionType() (wasm.FunctionType, error) {
	form, err := c.ReadByte()
	if err != nil {
		return wasm.FunctionType{}, err
	}
	if form != 0x60 {
		return wasm.FunctionType{}, c.wrap(wasm.InvalidLeadingByteError(form))
	}

	params, err := c.readValueTypeVec()
	if err != nil {
		return wasm.FunctionType{}, err
	}
	results, err := c.readValueTypeVec()
	if err != nil {
		return wasm.FunctionType{}, err
	}
	return wasm.FunctionType{Params: params, Results: results}, nil
}

func (c *Cursor) readValueTypeVec() ([]wasm.ValueType, error) {
	count, err := c.ReadLEB128U32()
	if err != nil {
		return nil, err
	}
	vec := make([]wasm.ValueType, count)
	for i := range vec {
		vec[i], err = c.ReadValueType()
		if err != nil {
			return nil, err
		}
	}
	return vec, nil
}
