package models

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Medicine{},
		&Prescription{},
		&Pharmacy{},
		&DeliveryPartner{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&DeliveryTracking{},
		&DeliveryProof{},
		&EmergencyDeliveryRequest{},
	}
}
