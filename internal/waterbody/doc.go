// Package waterbody models biochemical oxygen demand (BOD) in interconnected
// well-mixed water bodies.
//
// The central system is [TwoReservoir]: two control volumes linked by
// dispersive exchange, the first also exchanging with an open boundary (a
// bay) held at fixed concentration, both subject to first-order biological
// decay, and the first receiving a time-gated point-source load.
package waterbody
