package settings

// entry is one row of the device's settings request table: the selector
// byte, the addressing triplet for the request header, and the decode
// variant. The triplets vary per entry and are not computable from the
// selector; the table is reproduced verbatim from the device specification.
type entry struct {
	Name      string
	Selector  uint8
	Port      uint8
	Parameter uint8
	Operation uint8
	Named     bool // payload carries a name string at NameOffset
}

// NameOffset is where the associated name string starts inside a named
// settings payload.
const NameOffset = 96

// requestTable drives the enumerator in strict index order. Entries 0-8
// decode as plain word arrays; entries 9-15 additionally carry a name.
var requestTable = [16]entry{
	{Name: "pump_time", Selector: 0x00, Port: 1, Parameter: 0x10, Operation: 0x02},
	{Name: "glucose_units", Selector: 0x01, Port: 1, Parameter: 0x11, Operation: 0x02},
	{Name: "bg_targets", Selector: 0x02, Port: 1, Parameter: 0x14, Operation: 0x03},
	{Name: "insulin_sensitivity", Selector: 0x03, Port: 1, Parameter: 0x15, Operation: 0x03},
	{Name: "carb_ratios", Selector: 0x04, Port: 1, Parameter: 0x16, Operation: 0x03},
	{Name: "bolus_limits", Selector: 0x05, Port: 2, Parameter: 0x20, Operation: 0x02},
	{Name: "basal_limits", Selector: 0x06, Port: 2, Parameter: 0x21, Operation: 0x02},
	{Name: "alarm_config", Selector: 0x07, Port: 4, Parameter: 0x30, Operation: 0x02},
	{Name: "pump_status", Selector: 0x08, Port: 4, Parameter: 0x31, Operation: 0x01},
	{Name: "basal_profile_0", Selector: 0x09, Port: 2, Parameter: 0x40, Operation: 0x04, Named: true},
	{Name: "basal_profile_1", Selector: 0x0a, Port: 2, Parameter: 0x41, Operation: 0x04, Named: true},
	{Name: "basal_profile_2", Selector: 0x0b, Port: 2, Parameter: 0x42, Operation: 0x04, Named: true},
	{Name: "basal_profile_3", Selector: 0x0c, Port: 2, Parameter: 0x43, Operation: 0x04, Named: true},
	{Name: "bolus_preset_0", Selector: 0x0d, Port: 2, Parameter: 0x50, Operation: 0x05, Named: true},
	{Name: "bolus_preset_1", Selector: 0x0e, Port: 2, Parameter: 0x51, Operation: 0x05, Named: true},
	{Name: "bolus_preset_2", Selector: 0x0f, Port: 2, Parameter: 0x52, Operation: 0x05, Named: true},
}
