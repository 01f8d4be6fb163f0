package model

import "fmt"

// TruckSizes are the delivery quantities for truck actions.
type TruckSizes struct {
	Full4x5  int64
	Full4x8  int64
	Split4x5 int64
	Split4x8 int64
}

func DefaultTruckSizes() TruckSizes {
	return TruckSizes{Full4x5: 1000, Full4x8: 640, Split4x5: 500, Split4x8: 300}
}

// SKUQuantity is one positive quantity for one sheet type.
type SKUQuantity struct {
	SKU      SKU
	Quantity int64
}

// TruckLoad is either a FullTruck of one SKU or a SplitTruck of both.
type TruckLoad interface {
	Quantities(sizes TruckSizes) ([]SKUQuantity, error)
	String() string
}

type FullTruck struct {
	SKU SKU
}

func (f FullTruck) Quantities(sizes TruckSizes) ([]SKUQuantity, error) {
	switch f.SKU {
	case SKU4x5:
		return []SKUQuantity{{SKU: SKU4x5, Quantity: sizes.Full4x5}}, nil
	case SKU4x8:
		return []SKUQuantity{{SKU: SKU4x8, Quantity: sizes.Full4x8}}, nil
	default:
		return nil, fmt.Errorf("unknown truck type %q", f.SKU)
	}
}

func (f FullTruck) String() string {
	return "full:" + string(f.SKU)
}

type SplitTruck struct{}

func (SplitTruck) Quantities(sizes TruckSizes) ([]SKUQuantity, error) {
	return []SKUQuantity{
		{SKU: SKU4x5, Quantity: sizes.Split4x5},
		{SKU: SKU4x8, Quantity: sizes.Split4x8},
	}, nil
}

func (SplitTruck) String() string {
	return "split"
}
