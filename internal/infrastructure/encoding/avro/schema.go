package avro

// OrderCreatedSchema is the Avro schema of the order-created event.
const OrderCreatedSchema = `{
	"type": "record",
	"name": "OrderCreated",
	"namespace": "com.bookorders.order",
	"fields": [
		{"name": "event_id", "type": "string"},
		{"name": "order_id", "type": "string"},
		{"name": "book_id", "type": "string"},
		{"name": "quantity", "type": "int"},
		{"name": "total_price", "type": "double"},
		{"name": "currency", "type": "string"},
		{"name": "status", "type": "string"},
		{"name": "created_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`
