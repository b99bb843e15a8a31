// Package domain turns tsunami bulletins from a warning center into
// broadcast statements for one forecast office.
//
// # Bulletin Conventions
//
// A bulletin is split into segments by "$$". Each segment that concerns the
// coast carries a UGC zone block and one or more VTEC lines:
//
//	CAZ006-505-530-210815-
//	/O.NEW.PAAQ.TS.W.0001.200721T0612Z-000000T0000Z/
//
// The significance letter gives the hazard (W warning, A watch, Y advisory)
// and the action gives its stage: NEW starts it, CON/EXT/EXA/EXB/UPG continue
// it, CAN/EXP end it. A product class of T marks a test.
//
// Zone ranges are condensed as "CAZ039>041" and expand to
// "CAZ039-CAZ040-CAZ041". Three digit tokens inherit the state prefix of the
// preceding full code.
//
// # Arrival Sections
//
// The arrival section differs by issuing center. The national center prints a
// station, region and time table; Guam and American Samoa print an ETA table
// with coordinates and MM/DD dates; Hawaii prints a single earliest-arrival
// sentence; the Caribbean prints a two-line forecast-begin sentence. Each
// layout has its own ArrivalAdapter and all of them produce lines shaped
// "STATION ON MONTH DAY AT TIME AM/PM".
//
// # Statements
//
// Parse yields a HazardInfo, Resolve decides which hazards to compose,
// DescribeAreas names the affected coast and Composer.Compose fills a template.
// Every path degrades to a placeholder ("XXXXXX") instead of failing, so the
// operator always receives a statement to finish by hand.
package domain
