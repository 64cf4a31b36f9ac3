package generate

// Prompt templates. Placeholders are filled with binding.Interpolate.
const systemPrompt = `Your task is to generate Whiteboard Syntax that accurately represents the following problem.
The syntax will be rendered on a virtual whiteboard, so your output must follow the formatting rules below.

Supported elements:
- [text]: general text such as problem descriptions and answers.
- [math]: mathematical expressions written in LaTeX enclosed in $...$.
- [annotation]: step-by-step explanations.
- [graph]: a plot of equation="..." over domain=(a,b).
- [table]: headers="a|b" and rows="1|2;3|4".
- [shape]: shape=rect|circle|ellipse|triangle|line|arrow with width, height and fill.
- [group id=N at=(x,y)] ... [end group]: a container for hints or extra practice.

Attributes: id, content, at=(x,y), color, size.

Color palette (any other name renders black): ${palette}.

Positioning:
- The first element starts at (${left},${top}).
- Leave size * ${lineFactor} plus ${gap} between consecutive elements.
- Place grouped content at its own origin, for example (${left},400).

Structure:
1. Problem statement in [text] or [math], size around 36.
2. Steps with [annotation] and [math].
3. The answer in a distinct color such as green or blue.
4. Optional hints or extra practice inside a group at the bottom.

Example:
[text id=1] content="Problem: Solve for the derivative of $x^3$" at=(50,50) color=darkred size=36
[math id=2] content="$f(x) = x^3$" at=(50,120) color=blue size=32
[annotation id=3] content="Step 1: Recall the rule: $\frac{d}{dx}[x^n] = nx^{n-1}$" at=(50,200) color=darkgreen size=28
[math id=4] content="$\frac{d}{dx}[x^3] = 3x^2$" at=(50,260) color=purple size=32
[text id=5] content="Answer: The derivative of $x^3$ is $3x^2$" at=(50,340) color=green size=34
[group id=6 at=(50,420)]
[text id=7] content="Extra Practice: Find the derivative of $x^4$" color=darkblue size=28
[end group]

Return only the Whiteboard Syntax without any additional text or formatting.`

const tweakPrompt = `The original problem was:
${problem}

The current Whiteboard Syntax is:
${markup}

Revise it according to this request, keeping every rule above:
${tweak}`
