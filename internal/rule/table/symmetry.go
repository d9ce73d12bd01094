package table

// symmetryRemap gives, per neighborhood and symmetry keyword, the input
// position remappings that expand one transition into its symmetric
// variants. Position 0 is the center and the last position is the output;
// both stay fixed.
var symmetryRemap = map[Neighborhood]map[string][][]int{
	VonNeumann: {
		"rotate4": {
			{0, 1, 2, 3, 4, 5}, {0, 2, 3, 4, 1, 5},
			{0, 3, 4, 1, 2, 5}, {0, 4, 1, 2, 3, 5},
		},
		"rotate4reflect": {
			{0, 1, 2, 3, 4, 5}, {0, 2, 3, 4, 1, 5},
			{0, 3, 4, 1, 2, 5}, {0, 4, 1, 2, 3, 5},
			{0, 4, 3, 2, 1, 5}, {0, 3, 2, 1, 4, 5},
			{0, 2, 1, 4, 3, 5}, {0, 1, 4, 3, 2, 5},
		},
		"reflect_horizontal": {
			{0, 1, 2, 3, 4, 5}, {0, 1, 4, 3, 2, 5},
		},
	},
	Moore: {
		"rotate4": {
			{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, {0, 3, 4, 5, 6, 7, 8, 1, 2, 9},
			{0, 5, 6, 7, 8, 1, 2, 3, 4, 9}, {0, 7, 8, 1, 2, 3, 4, 5, 6, 9},
		},
		"rotate8": {
			{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, {0, 2, 3, 4, 5, 6, 7, 8, 1, 9},
			{0, 3, 4, 5, 6, 7, 8, 1, 2, 9}, {0, 4, 5, 6, 7, 8, 1, 2, 3, 9},
			{0, 5, 6, 7, 8, 1, 2, 3, 4, 9}, {0, 6, 7, 8, 1, 2, 3, 4, 5, 9},
			{0, 7, 8, 1, 2, 3, 4, 5, 6, 9}, {0, 8, 1, 2, 3, 4, 5, 6, 7, 9},
		},
		"rotate4reflect": {
			{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, {0, 3, 4, 5, 6, 7, 8, 1, 2, 9},
			{0, 5, 6, 7, 8, 1, 2, 3, 4, 9}, {0, 7, 8, 1, 2, 3, 4, 5, 6, 9},
			{0, 1, 8, 7, 6, 5, 4, 3, 2, 9}, {0, 7, 6, 5, 4, 3, 2, 1, 8, 9},
			{0, 5, 4, 3, 2, 1, 8, 7, 6, 9}, {0, 3, 2, 1, 8, 7, 6, 5, 4, 9},
		},
		"rotate8reflect": {
			{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, {0, 2, 3, 4, 5, 6, 7, 8, 1, 9},
			{0, 3, 4, 5, 6, 7, 8, 1, 2, 9}, {0, 4, 5, 6, 7, 8, 1, 2, 3, 9},
			{0, 5, 6, 7, 8, 1, 2, 3, 4, 9}, {0, 6, 7, 8, 1, 2, 3, 4, 5, 9},
			{0, 7, 8, 1, 2, 3, 4, 5, 6, 9}, {0, 8, 1, 2, 3, 4, 5, 6, 7, 9},
			{0, 8, 7, 6, 5, 4, 3, 2, 1, 9}, {0, 7, 6, 5, 4, 3, 2, 1, 8, 9},
			{0, 6, 5, 4, 3, 2, 1, 8, 7, 9}, {0, 5, 4, 3, 2, 1, 8, 7, 6, 9},
			{0, 4, 3, 2, 1, 8, 7, 6, 5, 9}, {0, 3, 2, 1, 8, 7, 6, 5, 4, 9},
			{0, 2, 1, 8, 7, 6, 5, 4, 3, 9}, {0, 1, 8, 7, 6, 5, 4, 3, 2, 9},
		},
		"reflect_horizontal": {
			{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, {0, 1, 8, 7, 6, 5, 4, 3, 2, 9},
		},
	},
	Hexagonal: {
		"rotate2": {
			{0, 1, 2, 3, 4, 5, 6, 7}, {0, 4, 5, 6, 1, 2, 3, 7},
		},
		"rotate3": {
			{0, 1, 2, 3, 4, 5, 6, 7}, {0, 3, 4, 5, 6, 1, 2, 7},
			{0, 5, 6, 1, 2, 3, 4, 7},
		},
		"rotate6": {
			{0, 1, 2, 3, 4, 5, 6, 7}, {0, 2, 3, 4, 5, 6, 1, 7},
			{0, 3, 4, 5, 6, 1, 2, 7}, {0, 4, 5, 6, 1, 2, 3, 7},
			{0, 5, 6, 1, 2, 3, 4, 7}, {0, 6, 1, 2, 3, 4, 5, 7},
		},
		"rotate6reflect": {
			{0, 1, 2, 3, 4, 5, 6, 7}, {0, 2, 3, 4, 5, 6, 1, 7},
			{0, 3, 4, 5, 6, 1, 2, 7}, {0, 4, 5, 6, 1, 2, 3, 7},
			{0, 5, 6, 1, 2, 3, 4, 7}, {0, 6, 1, 2, 3, 4, 5, 7},
			{0, 6, 5, 4, 3, 2, 1, 7}, {0, 5, 4, 3, 2, 1, 6, 7},
			{0, 4, 3, 2, 1, 6, 5, 7}, {0, 3, 2, 1, 6, 5, 4, 7},
			{0, 2, 1, 6, 5, 4, 3, 7}, {0, 1, 6, 5, 4, 3, 2, 7},
		},
	},
	OneDimensional: {
		"reflect": {
			{0, 1, 2, 3}, {0, 2, 1, 3},
		},
	},
}
