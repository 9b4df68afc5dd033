// Package mqtt bridges the control loop to an MQTT broker: it assembles
// the telemetry snapshot from the meter, BMS and PCS topics and publishes
// the per-tick power order to the converter.
package mqtt
