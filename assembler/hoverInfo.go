package assembler

type hoverInfoFormatsType struct {
	labelDefinition string
	labelReference  string
	variable        string
	predefined      string
	integerLiteral  string
	computeHeader   string
	encoding        string

	destination map[string]string
	computation map[string]string
	jump        map[string]string
}

var hoverInfoFormats = hoverInfoFormatsType{
	labelDefinition: "Definition of label `%s`.\n\nAddress of instruction `%d`",
	labelReference:  "Reference to label `%s`\n\nEvaluates to `%d`",
	variable:        "Variable `%s`\n\nAllocated at `RAM[%d]`",
	predefined:      "Predefined symbol `%s`\n\nEvaluates to `%d`",
	integerLiteral:  "Address Literal `%d` (`0x%04X`)",
	computeHeader:   "Compute Instruction `%s`",
	encoding:        "Encoding: `%s`",

	destination: map[string]string{
		"M":   "Stores the result in `RAM[A]`",
		"D":   "Stores the result in `D`",
		"MD":  "Stores the result in `RAM[A]` and `D`",
		"A":   "Stores the result in `A`",
		"AM":  "Stores the result in `A` and `RAM[A]`",
		"AD":  "Stores the result in `A` and `D`",
		"AMD": "Stores the result in `A`, `RAM[A]` and `D`",
	},
	computation: map[string]string{
		"0":   "Constant `0`",
		"1":   "Constant `1`",
		"-1":  "Constant `-1`",
		"D":   "The value of `D`",
		"A":   "The value of `A`",
		"M":   "The value of `RAM[A]`",
		"!D":  "Bitwise NOT of `D`",
		"!A":  "Bitwise NOT of `A`",
		"!M":  "Bitwise NOT of `RAM[A]`",
		"-D":  "Negation of `D`",
		"-A":  "Negation of `A`",
		"-M":  "Negation of `RAM[A]`",
		"D+1": "`D` incremented by one",
		"A+1": "`A` incremented by one",
		"M+1": "`RAM[A]` incremented by one",
		"D-1": "`D` decremented by one",
		"A-1": "`A` decremented by one",
		"M-1": "`RAM[A]` decremented by one",
		"D+A": "`D + A`",
		"D+M": "`D + RAM[A]`",
		"D-A": "`D - A`",
		"D-M": "`D - RAM[A]`",
		"A-D": "`A - D`",
		"M-D": "`RAM[A] - D`",
		"D&A": "Bitwise AND of `D` and `A`",
		"D&M": "Bitwise AND of `D` and `RAM[A]`",
		"D|A": "Bitwise OR of `D` and `A`",
		"D|M": "Bitwise OR of `D` and `RAM[A]`",
	},
	jump: map[string]string{
		"JGT": "Jumps to `ROM[A]` if the result is greater than zero",
		"JEQ": "Jumps to `ROM[A]` if the result is zero",
		"JGE": "Jumps to `ROM[A]` if the result is greater than or equal to zero",
		"JLT": "Jumps to `ROM[A]` if the result is less than zero",
		"JNE": "Jumps to `ROM[A]` if the result is not zero",
		"JLE": "Jumps to `ROM[A]` if the result is less than or equal to zero",
		"JMP": "Always jumps to `ROM[A]`",
	},
}
