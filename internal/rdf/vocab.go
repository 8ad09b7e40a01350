package rdf

// CIDOC-CRM and supporting vocabulary IRIs this reader traverses. Property
// names are constructed literally (including the hyphenated
// "P4_has_time-span") to match the ontology as published.
const (
	crmNS = "http://www.cidoc-crm.org/cidoc-crm/"

	typeE21Person  = crmNS + "E21_Person"
	typeE67Birth   = crmNS + "E67_Birth"
	typeE69Death   = crmNS + "E69_Death"
	typeE85Joining = crmNS + "E85_Joining"
	typeE7Activity = crmNS + "E7_Activity"

	predRDFSLabel = "http://www.w3.org/2000/01/rdf-schema#label"
	predOwlSameAs = "http://www.w3.org/2002/07/owl#sameAs"

	predP98BroughtIntoLife  = crmNS + "P98_brought_into_life"
	predP100WasDeathOf      = crmNS + "P100_was_death_of"
	predP7TookPlaceAt       = crmNS + "P7_took_place_at"
	predP168PlaceIsDefinedBy = crmNS + "P168_place_is_defined_by"
	predP4HasTimeSpan       = crmNS + "P4_has_time-span"
	predP82AtSomeTimeWithin = crmNS + "P82_at_some_time_within"
	predP82aBeginOfTheBegin = crmNS + "P82a_begin_of_the_begin"
	predP82bEndOfTheEnd     = crmNS + "P82b_end_of_the_end"
	predP143Joined          = crmNS + "P143_joined"
	predP14CarriedOutBy     = crmNS + "P14_carried_out_by"
	predP11HadParticipant   = crmNS + "P11_had_participant"
	predP1IsIdentifiedBy    = crmNS + "P1_is_identified_by"
)
