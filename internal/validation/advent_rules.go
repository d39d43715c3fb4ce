package validation

// AdventRules returns the hand-authored rule table for the 24 calendar days.
func AdventRules() map[int]Rule {
	return map[int]Rule{
		// Brand name long enough to forgive one typo.
		1: MustRule(StrategyExact, []string{"Cloetta"},
			WithTolerance(1), WithDescription("Company that sells juleskum")),
		2: MustRule(StrategyList, []string{
			"docka", "doll", "leksaksbil", "leksaksbilbil", "toy car",
			"tv-spel", "tvspel", "tv spel", "videospel", "video game", "video games",
			"fotbollströja", "fotbollstroja", "football shirt", "soccer jersey",
		}, WithItems(4, 4), WithDescription("Swedish translations of toy items")),
		3: MustRule(StrategyContains, []string{
			"6 januari", "januari 6", "trettondedag", "día de los reyes", "dia de los reyes",
		}, WithDescription("Date when Spanish children get presents")),
		4: MustRule(StrategyExact, []string{"Menora", "Menorah"},
			WithDescription("Jewish candlestick")),
		5: MustRule(StrategyList, []string{
			"polstjärnan", "polstjarnan", "north star", "sirius",
			"dödsstjärnan", "dodsstjarnan", "death star",
		}, WithItems(3, 3), WithDescription("Navigation star, brightest star and Star Wars station")),
		6: MustRule(StrategyAnyOf, []string{
			"Unisexdoft", "Unisexdoften", "Sällskapsspel", "Sallskapsspel",
			"Sällskapsspelet", "hemstickade", "hemstickade plagget",
			"Evenemangsbiljett", "Evenemangsbiljetten", "Stormkök", "Stormkok",
			"Stormköket", "Mobillåda", "Mobilladan", "Mobillådan",
		}, WithDescription("Any of the last six years' Christmas gift of the year")),
		7: MustRule(StrategyExact, []string{
			"Cheopspyramiden", "Keopspyramiden", "Great Pyramid", "Giza pyramid",
			"Pyramid of Giza", "Pyramid of Cheops", "Pyramid of Khufu",
		}, WithDescription("Only remaining ancient wonder")),
		8: MustRule(StrategyList, []string{
			"for", "while", "for-loop", "while-loop", "for loop", "while loop",
		}, WithItems(2, 2), WithDescription("Two main kinds of programming loops")),
		9: MustRule(StrategyNumeric, []string{"110"},
			WithTolerance(5), WithDescription("Cheetah top speed in km/h")),
		10: MustRule(StrategyExact, []string{"6", "sex", "six", "6 stycken", "sex stycken"},
			WithDescription("Number of Nobel prizes")),
		11: MustRule(StrategyExact, []string{"Eva"},
			WithDescription("Name day on Christmas Eve")),
		12: MustRule(StrategyExact, []string{"Route 66", "Route66", "Highway 66"},
			WithDescription("Famous US highway")),
		13: MustRule(StrategyExact, []string{"Lux"},
			WithDescription("Latin word for light")),
		14: MustRule(StrategyExact, []string{"Iran"},
			WithDescription("Country producing 90% of the world's saffron")),
		15: MustRule(StrategyContains, []string{
			"i jultomtens verkstad", "jultomtens verkstad", "Santa's Workshop", "Santas Workshop",
		}, WithDescription("First segment in Kalle Anka")),
		16: MustRule(StrategyList, []string{"Golden Gate", "Golden Gate Bridge", "Tower Bridge"},
			WithItems(2, 2), WithDescription("Two famous bridges")),
		17: MustRule(StrategyExact, []string{"Atlanta"},
			WithDescription("City with the world's busiest airport")),
		18: MustRule(StrategyList, []string{
			"guld", "gold", "rökelse", "rokelse", "frankincense", "incense", "myrra", "myrrh",
		}, WithItems(3, 3), WithDescription("Three gifts to baby Jesus")),
		19: MustRule(StrategyExact, []string{"Wuhan"},
			WithDescription("City where COVID-19 was first reported")),
		20: MustRule(StrategyContains, []string{
			"share screen", "share", "screen", "dela skärm", "dela skarm", "skärmdelning",
		}, WithDescription("Green button in Zoom")),
		21: MustRule(StrategyContains, []string{
			"vintersolstånd", "vintersolstand", "solstice", "kortaste dag", "kortaste dagen", "shortest day",
		}, WithDescription("What is special about December 21")),
		22: MustRule(StrategyExact, []string{"Moment 22", "Catch-22", "Catch 22"},
			WithDescription("Name of a paradoxical situation")),
		23: MustRule(StrategyList, []string{
			"röd", "rod", "red", "lila", "purple", "grön", "gron", "green",
			"gul", "yellow", "blå", "bla", "blue",
		}, WithItems(5, 5), WithDescription("Five colors in Färgfemman")),
		24: MustRule(StrategyExact, []string{"Japan"},
			WithDescription("Country with the world's most-sold newspaper")),
	}
}

// DefaultRegistry returns a registry holding AdventRules.
func DefaultRegistry() *Registry {
	return MustRegistry(AdventRules())
}
