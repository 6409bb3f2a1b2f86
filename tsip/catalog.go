package tsip

// Catalog lists the fixed-layout packets of Trimble's TSIP reference (Resolution-T and Copernicus
// II flavours).  Variable-length packets, like 0x47 (signal levels), 0x6d (all-in-view satellite
// selection) and 0x8f-2a (fix and channel tracking info), are not here; they decode as opaque
// packets and are parsed by their consumers.
var Catalog = []Definition{
	// Commands.
	{Sub(0x1c, 0x01), "Request firmware version", ""},
	{Sub(0x1c, 0x03), "Request hardware component version", ""},
	{Sub(0x1e, 0x46), "Factory reset", ""},
	{Sub(0x1e, 0x4b), "Cold start", ""},
	{Code(0x1f), "Request software version", ""},
	{Code(0x21), "Request current time", ""},
	{Code(0x23), "Initial position (XYZ ECEF)", ">fff"},
	{Code(0x24), "Request GPS receiver position fix mode", ""},
	{Code(0x25), "Initiate soft reset and self test", ""},
	{Code(0x26), "Request health", ""},
	{Code(0x27), "Request signal levels", ""},
	{Code(0x2b), "Initial position (latitude, longitude, altitude)", ">fff"},
	{Code(0x2d), "Request oscillator offset", ""},
	{Code(0x2e), "Set GPS time", ">fh"},
	{Code(0x31), "Accurate initial position (XYZ ECEF)", ">ddd"},
	{Code(0x32), "Accurate initial position (latitude, longitude, altitude)", ">ddd"},
	{Code(0x35), "Set or request I/O options", ">BBBB"},
	{Code(0x37), "Request last position and velocity", ""},
	{Code(0x38), "Request or load satellite system data", ">BBB"},
	{Code(0x3c), "Request satellite tracking status", ">B"},
	{Sub(0x8e, 0x4f), "Set PPS width", ">d"},
	{Sub(0x8e, 0xa5), "Set packet broadcast mask", ">HH"},
	{Sub(0x8e, 0xab), "Request primary timing packet", ">B"},
	{Sub(0x8e, 0xac), "Request supplemental timing packet", ">B"},

	// Reports.
	{Code(0x41), "GPS time", ">fhf"},
	{Code(0x42), "Single-precision position fix (XYZ ECEF)", ">ffff"},
	{Code(0x43), "Velocity fix (XYZ ECEF)", ">fffff"},
	{Code(0x45), "Software version information", ">BBBBBBBBBB"},
	{Code(0x46), "Health of receiver", ">BB"},
	{Code(0x4a), "Single-precision position fix (latitude, longitude, altitude)", ">fffff"},
	{Code(0x4b), "Machine/code ID and additional status", ">BBB"},
	{Code(0x55), "I/O options", ">BBBB"},
	{Code(0x56), "Velocity fix (east, north, up)", ">fffff"},
	{Code(0x57), "Information about last computed fix", ">BBfh"},
	{Code(0x5a), "Raw measurement data", ">Bffffd"},
	{Code(0x5c), "Satellite tracking status", ">BBBBffffBBBB"},
	{Code(0x82), "Differential position fix mode", ">B"},
	{Code(0x83), "Double-precision position fix (XYZ ECEF)", ">ddddf"},
	{Code(0x84), "Double-precision position fix (latitude, longitude, altitude)", ">ddddf"},
	{Sub(0x8f, 0x15), "Current datum values", ">bddddd"},
	{Sub(0x8f, 0x17), "UTM single precision output", ">chfffff"},
	{Sub(0x8f, 0x18), "UTM double precision output", ">chddddf"},
	{Sub(0x8f, 0x20), "Last fix with extra information (binary fixed point)", ">BhhhHiIiBBBBBBh"},
	{Sub(0x8f, 0x21), "Accuracy information", ">BHHHHhB"},
	{Sub(0x8f, 0x23), "Last compact fix information", ">IHBBIIihhhH"},
	{Sub(0x8f, 0x26), "Non-volatile memory status", ""},
	{Sub(0x8f, 0x2b), "Fix and channel tracking info (type 2)", ">BBHIiIiiiiBBB"},
	{Sub(0x8f, 0x4a), "Cable delay and PPS polarity", ">BBBdI"},
	{Sub(0x8f, 0x4f), "PPS width", ">d"},
	{Sub(0x8f, 0xab), "Primary timing packet", ">IHhBBBBBBH"},
	{Sub(0x8f, 0xac), "Supplemental timing packet", ">BBBIHHBBBBffIffdddfI"},
}

// Default is the registry built from Catalog.
var Default = MustRegistry(Catalog)
