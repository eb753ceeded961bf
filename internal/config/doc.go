// Package config loads the cluster connection file.
//
// The file is a YAML list of clusters:
//
//	- name: prod-events
//	  brokers: ["kafka-1:9093", "kafka-2:9093"]
//	  security_protocol: SASL_SSL
//	  sasl_mechanism: SCRAM-SHA-512
//	  sasl_username: brokerconf
//	  sasl_password: ${KAFKA_PROD_EVENTS_PASSWORD}
//	  request_timeout: 10s
//
// Passwords are expanded from the environment unless password_is_plaintext
// is set. LoadEnvFile can seed the environment from a dotenv file first.
// Unknown keys (such as topic definitions) are ignored.
package config
