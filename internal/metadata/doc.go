// Package metadata canonicalizes the optional personal fields mixed into a
// hardened password.
//
// Fields are always serialized in one fixed order (house_name,
// phone_suffix, core_memory, handle_name, birthday_token, custom), each
// tagged with its name and separated by ASCII unit separators. Absent fields
// keep their tag with an empty value, so the bytes never depend on map
// iteration order and an all-empty record is still distinguishable.
package metadata
