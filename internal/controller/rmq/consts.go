package rmq

const (
	traceName = "RMQ"

	exchangeKind       = "topic"
	exchangeDurable    = true
	exchangeAutoDelete = false
	exchangeInternal   = false
	exchangeNoWait     = false

	queueDurable    = true
	queueAutoDelete = false
	queueExclusive  = false
	queueNoWait     = false

	publishMandatory = false
	publishImmediate = false

	consumeAutoAck   = false
	consumeExclusive = false
	consumeNoLocal   = false
	consumeNoWait    = false

	prefetchCount = 16

	// voiceBindingKey matches every voice event routing key.
	voiceBindingKey = "voice.*"
	contentTypeJSON = "application/json"
)
